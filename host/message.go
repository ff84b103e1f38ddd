package host

// Undefined stands in for a missing header value.
const Undefined = "undefined"

func UserAgentMessage(userAgent string, present bool) string {
	if !present {
		userAgent = Undefined
	}

	return " \nUser-Agent: " + userAgent + "\n"
}
