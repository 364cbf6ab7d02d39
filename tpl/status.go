package tpl

import "strings"

var statusText = map[string]string{
	"100": "Continue",
	"101": "Switching Protocols",
	"103": "Early Hints",
	"200": "OK",
	"201": "Created",
	"202": "Accepted",
	"203": "Non-Authoritative Information",
	"204": "No Content",
	"205": "Reset Content",
	"206": "Partial Content",
	"208": "Already Reported",
	"226": "IM Used",
	"300": "Multiple Choices",
	"301": "Moved Permanently",
	"302": "Found",
	"303": "See Other",
	"304": "Not Modified",
	"305": "Use Proxy",
	"306": "Switch Proxy",
	"307": "Temporary Redirect",
	"308": "Permanent Redirect",
	"400": "Bad Request",
	"401": "Unauthorized",
	"402": "Payment Required",
	"403": "Forbidden",
	"404": "Not Found",
	"405": "Method Not Allowed",
	"406": "Not Acceptable",
	"407": "Proxy Authentication Required",
	"408": "Request Time-out",
	"409": "Conflict",
	"410": "Gone",
	"411": "Length Required",
	"412": "Precondition Failed",
	"413": "Payload Too Large",
	"414": "URI Too Long",
	"415": "Unsupported Media Type",
	"416": "Range Not Satisfiable",
	"417": "Expectation Failed",
	"421": "Misdirected Request",
	"422": "Unprocessable Entity",
	"423": "Locked",
	"424": "Failed Dependency",
	"425": "Too Early",
	"426": "Upgrade Required",
	"428": "Precondition Required",
	"429": "Too Many Requests",
	"431": "Request Header Fields Too Large",
	"451": "Unavailable For Legal Reasons",
	"500": "Internal Server Error",
	"501": "Not Implemented",
	"502": "Bad Gateway",
	"503": "Service Unavailable",
	"504": "Gateway Time-out",
	"505": "HTTP Version Not Supported",
	"506": "Variant Also Negotiates (Experimental)",
	"510": "Not Extended",
	"511": "Network Authentication Required",
}

// StatusText returns the reason phrase for an HTTP status code, or the empty
// string for codes it does not know.
func StatusText(code string) string { return statusText[code] }

// IsRedirect reports whether code is one of the HTTP redirects a template
// may request.
func IsRedirect(code string) bool {
	switch code {
	case "301", "302", "303", "307", "308":
		return true
	default:
		return false
	}
}

// isErrorStatus compares lexically, as the status is whatever text the
// template supplied.
func isErrorStatus(code string) bool {
	return code >= "400" && code <= "599"
}

// Client-side redirect documents.
const (
	jsReloadTop    = "<!DOCTYPE html><script>top.location.href=self.location.href.split('#')[0];</script>"
	jsReloadSelf   = "<!DOCTYPE html><script>self.location.href=self.location.href.split('#')[0]</script>"
	jsRedirectTop  = "<!DOCTYPE html><script>top.location.href='{}';</script>"
	jsRedirectSelf = "<!DOCTYPE html><script>self.location.href='{}';</script>"
)

// Redirect kinds accepted by the redirect block.
const (
	RedirectReloadTop    = "js:reload:top"
	RedirectReloadSelf   = "js:reload:self"
	RedirectRedirectTop  = "js:redirect:top"
	RedirectRedirectSelf = "js:redirect:self"
)

func jsRedirect(script, url string) string {
	return strings.Replace(script, "{}", url, 1)
}
