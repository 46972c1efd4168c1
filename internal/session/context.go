package session

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type ContentType string

const (
	Question ContentType = "question"
	Dare     ContentType = "dare"
)

type RelationshipStage string

const (
	StageFirstDates RelationshipStage = "first-dates"
	StageFewMonths  RelationshipStage = "few-months"
	StageLongTime   RelationshipStage = "long-time"
)

type EveningGoal string

const (
	GoalBreakRoutine     EveningGoal = "break-routine"
	GoalDeepenConnection EveningGoal = "deepen-connection"
	GoalHeatUp           EveningGoal = "heat-up"
	GoalEmotion          EveningGoal = "emotion"
)

type IntimacyLevel string

const (
	IntimacyCasual IntimacyLevel = "casual"
	IntimacyMedium IntimacyLevel = "medium"
	IntimacyBold   IntimacyLevel = "bold"

	// Conservative is the tier used when a level has no dedicated copy.
	Conservative = IntimacyCasual
)

type Player int

const (
	PlayerOne Player = 1
	PlayerTwo Player = 2
)

// Other returns the opposite player.
func (p Player) Other() Player {
	if p == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

// Context is the per-round view of a game session. Callers pass it by value;
// nothing downstream mutates it.
type Context struct {
	Player1           string            `json:"player1"`
	Player2           string            `json:"player2"`
	RelationshipStage RelationshipStage `json:"relationship_stage"`
	EveningGoal       EveningGoal       `json:"evening_goal"`
	IntimacyLevel     IntimacyLevel     `json:"intimacy_level"`
	CurrentPlayer     Player            `json:"current_player"`
	ContentType       ContentType       `json:"content_type"`
}

var nameRunes = regexp.MustCompile(`\S`)

// Validate reports whether every field needed to phrase a request is present.
func (c Context) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Player1, validation.Required, validation.RuneLength(1, 40), validation.Match(nameRunes)),
		validation.Field(&c.Player2, validation.Required, validation.RuneLength(1, 40), validation.Match(nameRunes)),
		validation.Field(&c.RelationshipStage, validation.Required,
			validation.In(StageFirstDates, StageFewMonths, StageLongTime)),
		validation.Field(&c.EveningGoal, validation.Required,
			validation.In(GoalBreakRoutine, GoalDeepenConnection, GoalHeatUp, GoalEmotion)),
		validation.Field(&c.IntimacyLevel, validation.Required,
			validation.In(IntimacyCasual, IntimacyMedium, IntimacyBold)),
		validation.Field(&c.CurrentPlayer, validation.Required, validation.In(PlayerOne, PlayerTwo)),
		validation.Field(&c.ContentType, validation.Required, validation.In(Question, Dare)),
	)
}

// With returns a copy targeted at the given content type and player.
func (c Context) With(kind ContentType, target Player) Context {
	c.ContentType = kind
	c.CurrentPlayer = target
	return c
}

// TargetName is the name of the player the content is addressed to.
func (c Context) TargetName() string {
	if c.CurrentPlayer == PlayerTwo {
		return c.Player2
	}
	return c.Player1
}

// OtherName is the name of the player not currently targeted.
func (c Context) OtherName() string {
	if c.CurrentPlayer == PlayerTwo {
		return c.Player1
	}
	return c.Player2
}
