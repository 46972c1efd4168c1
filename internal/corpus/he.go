package corpus

import (
	"unicode"

	"duetgen/internal/session"
)

const hePrompt = `אתה מנוע יצירתי שמייצר שאלות ואתגרים לזוגות בעברית.
החזר תמיד תשובה בעברית בלבד, ללא תרגום או הסבר.
התשובה צריכה להיות קצרה ומדויקת - משפט או שניים בלבד.
אל תוסיף הקדמות כמו "הנה שאלה" או "זה אתגר".

{{if .IsQuestion -}}
צור שאלה מעניינת ומעמיקה לזוג {{.Relationship}}.
השאלה מיועדת ל{{.Target}} ברמת פתיחות {{.Intimacy}}.
מטרת הערב: {{.Goal}}.

הקפד על:
- שאלה אישית ומעניינת
- מתאימה לרמת הפתיחות
- בעברית בלבד
- ישירה וקצרה

השאלה צריכה להיות מופנית ישירות ל{{.Target}} ולעזור ל{{.Other}} להכיר אותו/אותה טוב יותר.
{{- else -}}
צור אתגר או משימה מהנה לזוג {{.Relationship}}.
האתגר מיועד ל{{.Target}} ברמת פתיחות {{.Intimacy}}.
מטרת הערב: {{.Goal}}.

הקפד על:
- משימה מהנה ומתאימה
- לא מביכה או לא נוחה
- ניתנת לביצוע במקום
- בעברית בלבד
- הוראה ברורה וקצרה

האתגר צריך להיות משהו ש{{.Target}} יכול לעשות עכשיו, במקום, ושיהיה מהנה לשניהם.
{{- end}}
{{- if .Recent}}

אל תחזור על השאלות/אתגרים הבאים:
{{- range .Recent}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Closing}}

{{.Closing}}
{{- end}}`

func init() {
	register(&Locale{
		Name:     "he",
		Language: "Hebrew",
		Script:   unicode.Hebrew,
		Prefixes: []string{
			"הנה שאלה:",
			"שאלה:",
			"אתגר:",
			"הנה אתגר:",
			"זה אתגר:",
			"זו שאלה:",
			"השאלה היא:",
			"האתגר הוא:",
		},
		Stages: map[session.RelationshipStage]string{
			session.StageFirstDates: "שזה עוד בתחילת ההכרות",
			session.StageFewMonths:  "שיש להם כבר קצת היסטוריה משותפת",
			session.StageLongTime:   "שמכירים זה את זה טוב ורוצים לרענן",
		},
		Goals: map[session.EveningGoal]string{
			session.GoalBreakRoutine:     "השאלה צריכה להיות מפתיעה ויצירתית",
			session.GoalDeepenConnection: "השאלה צריכה לעזור להכיר זה את זה יותר לעומק",
			session.GoalHeatUp:           "השאלה צריכה להיות רומנטית ומחממת",
			session.GoalEmotion:          "השאלה צריכה להיות רגשית ומעוררת תחושות",
		},
		Intimacy: map[session.ContentType]map[session.IntimacyLevel]string{
			session.Question: {
				session.IntimacyCasual: "בסיסית ונעימה, מתאימה להכרות ראשונית",
				session.IntimacyMedium: "מעט יותר אישית, אבל עדיין נוחה",
				session.IntimacyBold:   "עמוקה ואישית, לזוגות שרוצים להעמיק",
			},
			session.Dare: {
				session.IntimacyCasual: "פשוטה וחמודה, מתאימה לדייטים ראשונים",
				session.IntimacyMedium: "מעט יותר אינטימית, אבל עדיין נוחה",
				session.IntimacyBold:   "רומנטית ואינטימית יותר",
			},
		},
		Closings: map[session.EveningGoal]string{
			session.GoalBreakRoutine:     "היה יצירתי ומפתיע!",
			session.GoalDeepenConnection: "מטרת השאלה היא ליצור חיבור עמוק יותר.",
			session.GoalHeatUp:           "השאלה צריכה להיות רומנטית ומחממת.",
			session.GoalEmotion:          "השאלה צריכה לעורר רגשות ולהיות משמעותית.",
		},
		Prompt: hePrompt,
		Variations: []string{
			"תן לי משהו אחר לגמרי, יצירתי ושונה.",
			"היה נועז ומקורי: זה חייב להיות שונה מכל מה שהזוג שמע הערב, מזווית חדשה שאף אחד לא מצפה לה.",
		},
		fallback: map[session.ContentType]map[session.IntimacyLevel][]string{
			session.Question: {
				session.IntimacyCasual: {
					"מה הדבר הכי מעניין שקרה לך השבוע?",
					"איך נראה יום מושלם עבורך?",
					"מה התחביב שהכי מעניין אותך?",
					"איזה מקום בעולם הכי מעניין אותך לבקר?",
					"מה הדבר שהכי מצחיק אותך?",
				},
				session.IntimacyMedium: {
					"מה הדבר הכי רומנטי שמישהו עשה עבורך?",
					"איך אתה אוהב להראות חיבה?",
					"מה החלום הכי מוזר שזכרת?",
					"מה המחמאה הכי יפה שקיבלת?",
					"איזה רגע בחיים הכי גרם לך להרגיש בטוח?",
				},
				session.IntimacyBold: {
					"מה הפחד הכי גדול שלך במערכות יחסים?",
					"איך אתה רוצה להרגיש אהוב?",
					"מה החלום הכי נועז שלך?",
					"איזה דבר על עצמך הכי קשה לך לקבל?",
					"מה הדבר שהכי חסר לך בחיים?",
				},
			},
			session.Dare: {
				session.IntimacyCasual: {
					"תן מחמאה כנה לבן/בת הזוג שלך",
					"חקה איך השני נראה כשהוא מרוכז",
					"ספר על הזיכרון הכי טוב מהשבוע",
					"עשו תמונה מצחיקה יחד",
					"שיר שיר שאתה אוהב",
				},
				session.IntimacyMedium: {
					"תן עיסוי קל לכתפיים",
					"תגיד מה הכי מעניין אותך בבן/בת הזוג",
					"שתף זיכרון מתוק מהילדות",
					"חבקו חיבוק של 30 שניות בדממה",
					"תתבוננו בעיניים זה של זה למשך דקה",
				},
				session.IntimacyBold: {
					"שתף את החלום הכי גדול שלך",
					"תגיד מה הכי מושך אותך בבן/בת הזוג",
					"ספר על רגע שבו הרגשת הכי קרוב",
					"תאר איך אתה רואה את העתיד יחד",
					"שתף משהו שמעולם לא סיפרת לאיש",
				},
			},
		},
	})
}
