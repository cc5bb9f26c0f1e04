package proto

type User struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

type SendMagicCodeRequest struct {
	Email string `json:"email"`
}

type SendMagicCodeResponse struct{}

type SignInWithMagicCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type SignInWithMagicCodeResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type Subscription struct {
	Id               string `json:"id"`
	UserId           string `json:"user_id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

type ListSubscriptionsRequest struct{}

type ListSubscriptionsResponse struct {
	Subscriptions []*Subscription `json:"subscriptions"`
}

// Entry filters accepted by ListEntriesRequest.
const (
	EntryFilterAll       = "all"
	EntryFilterFavorited = "favorited"
	EntryFilterTagged    = "tagged"
)

type Entry struct {
	Id          string   `json:"id"`
	Content     string   `json:"content"`
	CreatedAt   int64    `json:"created_at"` // unix milliseconds
	IsFavorited bool     `json:"is_favorited"`
	Tags        []string `json:"tags,omitempty"`
}

type ListEntriesRequest struct {
	Filter string `json:"filter"`
}

type ListEntriesResponse struct {
	Entries []*Entry `json:"entries"`
}

type AddEntryRequest struct {
	Content     string   `json:"content"`
	Tags        []string `json:"tags,omitempty"`
	IsFavorited bool     `json:"is_favorited"`
}

type AddEntryResponse struct {
	Entry *Entry `json:"entry"`
}

type SetFavoriteRequest struct {
	Id          string `json:"id"`
	IsFavorited bool   `json:"is_favorited"`
}

type SetFavoriteResponse struct{}
