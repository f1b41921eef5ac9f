package model

// Command is a chat command received from a user.
type Command struct {
	Text   string
	UserID string
	ChatID string
}

// Name returns the command word without arguments or a "@bot" suffix, e.g. "/test".
func (c Command) Name() string {
	word := c.Text
	for i, r := range word {
		if r == ' ' || r == '\n' || r == '\t' {
			word = word[:i]
			break
		}
	}
	for i, r := range word {
		if r == '@' {
			return word[:i]
		}
	}
	return word
}
