package email

// Message is one outbound e-mail.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Provider sends e-mail. Implementations are best-effort collaborators: the
// caller decides what to do with a failure, and domain code never lets one
// roll back a state change.
type Provider interface {
	Send(msg *Message) error
	Close() error
}
