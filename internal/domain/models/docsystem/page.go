package docsystem

// Default paging values applied when skip or limit is omitted.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// PageOptions is a skip/limit window over a table ordered by creation time.
type PageOptions struct {
	Offset int
	Limit  int
}

// ApplyDefaults corrects out-of-range values in place.
func (p *PageOptions) ApplyDefaults() {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}
