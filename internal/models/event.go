package models

// Event is one progress object streamed to the transport layer. Exactly one
// terminal event (Done true) is sent per request. Field presence selects the
// event kind on the wire:
//
//	{update, done:false}                       status text
//	{update, headline, pic, id, done:false}    retrieval-result preview
//	{response, done:false}                     answer token
//	{done:true} / {error, done:true}           terminal
type Event struct {
	Update   string         `json:"update,omitempty"`
	Headline string         `json:"headline,omitempty"`
	Pic      []ArticleImage `json:"pic,omitempty"`
	ID       int64          `json:"id,omitempty"`
	Response string         `json:"response,omitempty"`
	Error    string         `json:"error,omitempty"`
	Done     bool           `json:"done"`
}

// StatusEvent builds a status-text progress event.
func StatusEvent(update string) Event {
	return Event{Update: update}
}

// PreviewEvent builds a retrieval-result preview event for an article.
func PreviewEvent(a *Article) Event {
	return Event{
		Update:   a.URL,
		Headline: a.Headline,
		Pic:      a.Images,
		ID:       a.ID,
	}
}

// TokenEvent builds an answer-token event.
func TokenEvent(token string) Event {
	return Event{Response: token}
}

// DoneEvent builds the success terminal event.
func DoneEvent() Event {
	return Event{Done: true}
}

// ErrorEvent builds the failure terminal event.
func ErrorEvent(err error) Event {
	return Event{Error: err.Error(), Done: true}
}
