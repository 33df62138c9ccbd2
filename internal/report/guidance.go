package report

import "github.com/abhisek/lexiscreen/internal/risk"

// Guidance is the explanatory text shown with a risk level.
type Guidance struct {
	Title     string   `json:"title"`
	Message   string   `json:"message"`
	NextSteps []string `json:"nextSteps"`
}

// GuidanceFor returns the guidance for level l.
func GuidanceFor(l risk.Level) Guidance {
	switch l {
	case risk.High:
		return Guidance{
			Title: "High Indication of Dyslexia",
			Message: "Your test results show several patterns commonly associated with dyslexia. " +
				"We strongly recommend consulting with a learning specialist or educational psychologist " +
				"for a comprehensive evaluation.",
			NextSteps: []string{
				"Schedule an appointment with an educational psychologist",
				"Contact your local dyslexia association for resources",
				"Explore improvement activities for immediate support",
			},
		}
	case risk.Moderate:
		return Guidance{
			Title: "Moderate Signs of Reading Difficulties",
			Message: "Your results suggest some challenges that may be related to dyslexia. " +
				"Consider discussing these findings with an educational professional who can provide " +
				"more detailed assessment.",
			NextSteps: []string{
				"Consider professional assessment for detailed evaluation",
				"Try dyslexia improvement exercises",
				"Use reading aids and accessibility tools",
			},
		}
	default:
		return Guidance{
			Title: "Low Indication of Dyslexia",
			Message: "Your test performance shows good reading comprehension and processing speed. " +
				"However, if you continue to experience reading difficulties, professional evaluation " +
				"may still be beneficial.",
		}
	}
}

// Disclaimer is printed under every result.
const Disclaimer = "This screening is informational only and is not a clinical diagnosis."

// NoResults is shown when there is nothing to display.
const NoResults = "No test results found. Please take a test first."
