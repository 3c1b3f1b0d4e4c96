package drawer

// Feedback is the strength or tone of a haptic signal.
type Feedback int

const (
	FeedbackLight Feedback = iota
	FeedbackMedium
	FeedbackHeavy
	FeedbackSuccess
	FeedbackWarning
	FeedbackError
)

var feedbackNames = map[Feedback]string{
	FeedbackLight:   "light",
	FeedbackMedium:  "medium",
	FeedbackHeavy:   "heavy",
	FeedbackSuccess: "success",
	FeedbackWarning: "warning",
	FeedbackError:   "error",
}

func (f Feedback) String() string {
	if name, ok := feedbackNames[f]; ok {
		return name
	}
	return "unknown"
}

// FeedbackPort abstracts the platform haptic engine. Trigger is
// fire-and-forget; implementations must not block and failures are
// ignored by callers.
type FeedbackPort interface {
	Trigger(kind Feedback)
}

// NopFeedback is a FeedbackPort that does nothing.
type NopFeedback struct{}

// Trigger implements FeedbackPort.
func (NopFeedback) Trigger(Feedback) {}
