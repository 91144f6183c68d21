package domain

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Session binds a browser sid to the upstream bearer token and the
// minimal profile returned at login. It survives restarts via the
// session store.
type Session struct {
	SID           string `json:"-"`
	Token         string `json:"-"`
	Authenticated bool   `json:"authenticated"`
	User          *User  `json:"user,omitempty"`
}
