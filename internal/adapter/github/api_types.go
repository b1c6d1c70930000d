package github

// GitHub Pull Request Reviews API types.
// See: https://docs.github.com/en/rest/pulls/reviews#create-a-review-for-a-pull-request

// ReviewEvent is the action taken when submitting a review.
type ReviewEvent string

const (
	// EventComment submits general feedback without approval.
	EventComment ReviewEvent = "COMMENT"

	// EventApprove approves the pull request.
	EventApprove ReviewEvent = "APPROVE"

	// EventRequestChanges requests changes before merging.
	EventRequestChanges ReviewEvent = "REQUEST_CHANGES"
)

// Comment sides for the line-based review comments API.
const (
	SideLeft  = "LEFT"
	SideRight = "RIGHT"
)

// CreateReviewRequest is the payload for POST /repos/{owner}/{repo}/pulls/{number}/reviews.
type CreateReviewRequest struct {
	CommitID string          `json:"commit_id,omitempty"`
	Body     string          `json:"body,omitempty"`
	Event    ReviewEvent     `json:"event"`
	Comments []ReviewComment `json:"comments,omitempty"`
}

// ReviewComment is an inline comment anchored to a diff line.
// Line is the file line number on the given Side of the diff: SideRight for
// added or unchanged lines, SideLeft for removed lines.
type ReviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Side string `json:"side,omitempty"`
	Body string `json:"body"`
}

// CreateReviewResponse is the response from creating a review.
type CreateReviewResponse struct {
	ID    int64  `json:"id"`
	State string `json:"state"`
	Body  string `json:"body"`
	User  User   `json:"user"`
}

// User is a GitHub account reference.
type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// PullComment is an element of GET /repos/{owner}/{repo}/pulls/{number}/comments.
type PullComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	Path string `json:"path"`
	Line int    `json:"line"`
	User User   `json:"user"`
}

// IssueCommentRequest is the payload for POST /repos/{owner}/{repo}/issues/{number}/comments.
type IssueCommentRequest struct {
	Body string `json:"body"`
}

// GitHubErrorResponse is GitHub's standard error envelope.
type GitHubErrorResponse struct {
	Message string        `json:"message"`
	Errors  []GitHubError `json:"errors,omitempty"`
}

// GitHubError is a single validation error within an error response.
type GitHubError struct {
	Resource string `json:"resource,omitempty"`
	Field    string `json:"field,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}
