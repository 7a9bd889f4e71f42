package telemetry

import (
	"net/url"
	"regexp"
)

// query parameters that carry credentials: the tumblr consumer key and the
// libsql auth token
var secretParams = regexp.MustCompile(`(?i)\b(api_key|authToken)=[^&\s"']*`)

// Redact masks the values of credential query parameters anywhere in s.
func Redact(s string) string {
	return secretParams.ReplaceAllString(s, "${1}=REDACTED")
}

type redactedError struct {
	err error
}

func (e redactedError) Error() string {
	return Redact(e.err.Error())
}

func (e redactedError) Unwrap() error {
	return e.err
}

// RedactError returns err with credentials masked in its message. A
// *url.Error keeps its type, with its URL redacted.
func RedactError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if Redact(msg) == msg {
		return err
	}

	if urlErr, ok := err.(*url.Error); ok {
		redacted := *urlErr
		redacted.URL = Redact(urlErr.URL)
		err = &redacted
		msg = err.Error()
		if Redact(msg) == msg {
			return err
		}
	}
	return redactedError{err: err}
}
