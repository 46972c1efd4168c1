package corpus

import (
	"unicode"

	"duetgen/internal/session"
)

const enPrompt = `You write questions and dares for couples playing a game together.
Always answer in English only, without translation or explanation.
Keep the answer short and precise: one or two sentences.
Do not add an introduction such as "Here is a question" or "This is a dare".

{{if .IsQuestion -}}
Write an interesting, personal question for a couple {{.Relationship}}.
The question is for {{.Target}} at an openness level that is {{.Intimacy}}.
Goal of the evening: {{.Goal}}.

Make sure it is:
- personal and interesting
- right for the openness level
- in English only
- direct and short

Address the question directly to {{.Target}} so that {{.Other}} gets to know them better.
{{- else -}}
Write a fun challenge or task for a couple {{.Relationship}}.
The dare is for {{.Target}} at an openness level that is {{.Intimacy}}.
Goal of the evening: {{.Goal}}.

Make sure it is:
- fun and appropriate
- not embarrassing or uncomfortable
- doable right here, right now
- in English only
- a clear, short instruction

It should be something {{.Target}} can do right now, on the spot, and that both of them enjoy.
{{- end}}
{{- if .Recent}}

Do not repeat any of these:
{{- range .Recent}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Closing}}

{{.Closing}}
{{- end}}`

func init() {
	register(&Locale{
		Name:     "en",
		Language: "English",
		Script:   unicode.Latin,
		Prefixes: []string{
			"Here's a question:",
			"Here is a question:",
			"Here's a dare:",
			"Here is a dare:",
			"Here's a challenge:",
			"Here is a challenge:",
			"This is a dare:",
			"This is a question:",
			"The question is:",
			"The dare is:",
			"Question:",
			"Dare:",
			"Challenge:",
		},
		Stages: map[session.RelationshipStage]string{
			session.StageFirstDates: "who are still at the very start of getting to know each other",
			session.StageFewMonths:  "who already share a bit of history",
			session.StageLongTime:   "who know each other well and want to freshen things up",
		},
		Goals: map[session.EveningGoal]string{
			session.GoalBreakRoutine:     "it should be surprising and creative",
			session.GoalDeepenConnection: "it should help them know each other more deeply",
			session.GoalHeatUp:           "it should be romantic and warming",
			session.GoalEmotion:          "it should be emotional and stir feelings",
		},
		Intimacy: map[session.ContentType]map[session.IntimacyLevel]string{
			session.Question: {
				session.IntimacyCasual: "light and pleasant, right for a first acquaintance",
				session.IntimacyMedium: "a little more personal but still comfortable",
				session.IntimacyBold:   "deep and personal, for couples who want to go further",
			},
			session.Dare: {
				session.IntimacyCasual: "simple and sweet, right for first dates",
				session.IntimacyMedium: "a little more intimate but still comfortable",
				session.IntimacyBold:   "more romantic and intimate",
			},
		},
		Closings: map[session.EveningGoal]string{
			session.GoalBreakRoutine:     "Be creative and surprising!",
			session.GoalDeepenConnection: "The aim is to create a deeper connection.",
			session.GoalHeatUp:           "It should be romantic and warming.",
			session.GoalEmotion:          "It should stir emotions and feel meaningful.",
		},
		Prompt: enPrompt,
		Variations: []string{
			"Give me something completely different, creative and original.",
			"Be bold and inventive: it must be unlike anything this couple has seen tonight, with a fresh angle nobody would expect.",
		},
		fallback: map[session.ContentType]map[session.IntimacyLevel][]string{
			session.Question: {
				session.IntimacyCasual: {
					"What is the most interesting thing that happened to you this week?",
					"What does a perfect day look like for you?",
					"Which hobby interests you the most right now?",
					"Which place in the world would you most like to visit?",
					"What is the thing that makes you laugh the most?",
				},
				session.IntimacyMedium: {
					"What is the most romantic thing anyone has ever done for you?",
					"How do you like to show affection?",
					"What is the strangest dream you still remember?",
					"What is the nicest compliment you have ever received?",
					"Which moment in your life made you feel the safest?",
				},
				session.IntimacyBold: {
					"What is your biggest fear in relationships?",
					"How do you want to feel loved?",
					"What is your boldest dream?",
					"Which thing about yourself is hardest for you to accept?",
					"What is the thing you miss the most in your life?",
				},
			},
			session.Dare: {
				session.IntimacyCasual: {
					"Give your partner an honest compliment.",
					"Imitate how your partner looks when they concentrate.",
					"Tell the best memory from your week.",
					"Take a funny photo together.",
					"Sing a song you love.",
				},
				session.IntimacyMedium: {
					"Give a gentle shoulder massage.",
					"Say what interests you most about your partner.",
					"Share a sweet memory from your childhood.",
					"Hug for thirty seconds in silence.",
					"Look into each other's eyes for a full minute.",
				},
				session.IntimacyBold: {
					"Share your biggest dream.",
					"Say what attracts you most to your partner.",
					"Describe a moment when you felt closest to each other.",
					"Describe how you picture your future together.",
					"Share something you have never told anyone.",
				},
			},
		},
	})
}
