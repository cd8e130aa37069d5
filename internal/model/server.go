package model

// ServerID identifies one of the two independent round lanes.
type ServerID string

const (
	Server1 ServerID = "server1"
	Server2 ServerID = "server2"
)

func (s ServerID) Valid() bool {
	return s == Server1 || s == Server2
}

func Servers() []ServerID {
	return []ServerID{Server1, Server2}
}
