package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"duetgen/internal/decision"
	"duetgen/internal/orchestrator"
	"duetgen/internal/session"
)

func newPlayCmd(load loader) *cobra.Command {
	var sc session.Context
	var stage, goal, intimacy string

	cmd := &cobra.Command{
		Use:     "play",
		Short:   "Play rounds in the terminal",
		Example: "  duetgen play --player1 Dana --player2 Noa --stage few-months --goal heat-up --intimacy medium",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			sc.RelationshipStage = session.RelationshipStage(stage)
			sc.EveningGoal = session.EveningGoal(goal)
			sc.IntimacyLevel = session.IntimacyLevel(intimacy)
			sc.CurrentPlayer = session.PlayerOne
			sc.ContentType = session.Question
			if err := sc.Validate(); err != nil {
				return fmt.Errorf("invalid game settings: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			term := decision.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
			orch, cleanup, err := newOrchestrator(ctx, cfg, term, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return playLoop(ctx, orch, term, sc, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&sc.Player1, "player1", "", "first player's name")
	f.StringVar(&sc.Player2, "player2", "", "second player's name")
	f.StringVar(&stage, "stage", string(session.StageFewMonths), "relationship stage: first-dates | few-months | long-time")
	f.StringVar(&goal, "goal", string(session.GoalDeepenConnection), "evening goal: break-routine | deepen-connection | heat-up | emotion")
	f.StringVar(&intimacy, "intimacy", string(session.IntimacyCasual), "intimacy level: casual | medium | bold")
	_ = cmd.MarkFlagRequired("player1")
	_ = cmd.MarkFlagRequired("player2")
	return cmd
}

// playLoop alternates players until the user quits or input ends.
func playLoop(ctx context.Context, orch *orchestrator.Orchestrator, term *decision.Terminal, sc session.Context, logger *zap.Logger) error {
	player := session.PlayerOne

	for {
		sc.CurrentPlayer = player
		term.Printf("\n%s's turn. [q] question  [d] dare  [x] quit > ", sc.TargetName())

		answer, err := term.ReadLine(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}

		var kind session.ContentType
		switch strings.ToLower(answer) {
		case "q", "question":
			kind = session.Question
		case "d", "dare":
			kind = session.Dare
		case "x", "quit", "exit":
			return nil
		default:
			continue
		}

		res, err := orch.GenerateContent(ctx, sc, kind, player)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		logger.Debug("round played",
			zap.String("source", string(res.Source)),
			zap.Int("variant", res.Variant),
			zap.Int("round", res.Round),
		)
		term.Printf("\n%s\n", res.Content)
		player = player.Other()
	}
}
