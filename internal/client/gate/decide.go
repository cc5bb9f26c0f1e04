package gate

// View is what the page shows.
type View int

const (
	ViewNothing View = iota
	ViewSignIn
	ViewDashboard
	ViewCheckFailed
)

func (v View) String() string {
	switch v {
	case ViewNothing:
		return "nothing"
	case ViewSignIn:
		return "sign-in"
	case ViewDashboard:
		return "dashboard"
	case ViewCheckFailed:
		return "check-failed"
	}
	return "unknown"
}

type RenderInput struct {
	AuthLoading         bool
	HasUser             bool
	SubscriptionLoading bool
	CheckFailed         bool
}

// Decide picks the view. The dashboard is shown only once a signed-in user's
// check has succeeded.
func Decide(in RenderInput) View {
	switch {
	case in.AuthLoading:
		return ViewNothing
	case !in.HasUser:
		return ViewSignIn
	case in.CheckFailed:
		return ViewCheckFailed
	case in.SubscriptionLoading:
		return ViewNothing
	default:
		return ViewDashboard
	}
}
