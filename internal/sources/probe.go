package sources

import "github.com/tidwall/gjson"

// JSONProbe tries a fixed list of gjson paths in order and returns the first
// match accepted by Accept. Boards move their embedded state around between
// releases; every known layout gets one path here, newest first.
type JSONProbe struct {
	Paths  []string
	Accept func(gjson.Result) bool
}

func (p JSONProbe) Find(document string) (gjson.Result, string, bool) {
	accept := p.Accept
	if accept == nil {
		accept = func(r gjson.Result) bool { return r.Exists() }
	}
	for _, path := range p.Paths {
		if result := gjson.Get(document, path); accept(result) {
			return result, path, true
		}
	}
	return gjson.Result{}, "", false
}

func nonEmptyArray(r gjson.Result) bool {
	return r.IsArray() && len(r.Array()) > 0
}

func nonBlankString(r gjson.Result) bool {
	return r.Type == gjson.String && r.String() != ""
}
