package persist

import (
	"github.com/segmentio/ksuid"
)

// DBID is a unique identifier for client-side records such as pipeline operations
type DBID string

// GenerateID generates an application-wide unique, sortable ID
func GenerateID() DBID {
	id, err := ksuid.NewRandom()
	if err != nil {
		panic(err)
	}
	return DBID(id.String())
}

func (d DBID) String() string {
	return string(d)
}
