package mastodon

import (
	"net/url"
	"strings"
)

// Link holds the pagination links of a response.
type Link struct {
	Next    string
	Prev    string
	MaxID   string
	MinID   string
	SinceID string
}

// HasNext reports whether the server advertised a further page.
func (l Link) HasNext() bool {
	return l.MaxID != ""
}

// ParseLink parses an RFC 8288 Link header such as
//
//	<https://m.example/api/v1/accounts/1/following?max_id=7>; rel="next",
//	<https://m.example/api/v1/accounts/1/following?since_id=9>; rel="prev"
//
// Malformed segments are skipped.
func ParseLink(header string) Link {
	var link Link
	for _, segment := range strings.Split(header, ",") {
		target, params, ok := splitLinkSegment(segment)
		if !ok {
			continue
		}
		for _, rel := range strings.Fields(params["rel"]) {
			switch rel {
			case "next":
				link.Next = target
				link.MaxID = queryValue(target, "max_id")
			case "prev":
				link.Prev = target
				link.MinID = queryValue(target, "min_id")
				link.SinceID = queryValue(target, "since_id")
			}
		}
	}
	return link
}

func splitLinkSegment(segment string) (string, map[string]string, bool) {
	parts := strings.Split(segment, ";")
	target := strings.TrimSpace(parts[0])
	if len(target) < 2 || target[0] != '<' || target[len(target)-1] != '>' {
		return "", nil, false
	}

	params := make(map[string]string, len(parts)-1)
	for _, p := range parts[1:] {
		k, v, found := strings.Cut(strings.TrimSpace(p), "=")
		if !found {
			continue
		}
		params[strings.ToLower(strings.TrimSpace(k))] = strings.Trim(strings.TrimSpace(v), `"`)
	}
	return target[1 : len(target)-1], params, true
}

func queryValue(rawURL, key string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}
