package constants

const (
	MinRung      = 1
	MaxRung      = 10
	StartingRung = 3
)

const (
	StartingPasses         = 2
	AudienceMinRespondents = 10
	LeaderboardSize        = 5
)

// TimeoutMarker is recorded as the selected option when the clock runs out.
const TimeoutMarker = "T"

var OptionLabels = []string{"A", "B", "C", "D"}

const (
	LeaderboardScopeAll  = "all"
	LeaderboardScopeWeek = "week"
)

const (
	QueueAnswerRecorded  = "radladder.answer_recorded"
	QueueSessionFinished = "radladder.session_finished"
)
