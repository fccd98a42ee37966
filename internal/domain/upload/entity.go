package upload

// Candidate is a single uploaded file as received from the client.
// It lives only for the duration of one request and is never persisted
// unless it passes validation.
type Candidate struct {
	Data        []byte
	ContentType string // declared by the client, not trusted
	Filename    string // original name, may be empty
}

// Size returns the payload length in bytes.
func (c Candidate) Size() int64 { return int64(len(c.Data)) }
