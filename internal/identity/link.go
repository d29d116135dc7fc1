package identity

import "net/url"

// nestedLinkParams are the query parameters Firebase dynamic links use to wrap
// the actual action link.
var nestedLinkParams = []string{"link", "deep_link_id"}

// ParseEmailLink reports whether link is an email sign-in link and returns its oobCode.
func ParseEmailLink(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	q := u.Query()
	if q.Get("mode") == "signIn" && q.Get("oobCode") != "" {
		return q.Get("oobCode"), true
	}
	for _, param := range nestedLinkParams {
		if nested := q.Get(param); nested != "" && nested != link {
			if code, ok := ParseEmailLink(nested); ok {
				return code, true
			}
		}
	}
	return "", false
}
