package realtime

import (
	"net/http"
	"net/url"
	"testing"

	socketio "github.com/googollee/go-socket.io"
)

// handshakeConn fakes the parts of a connection the handshake reads.
type handshakeConn struct {
	socketio.Conn
	u      url.URL
	header http.Header
}

func (c handshakeConn) URL() url.URL              { return c.u }
func (c handshakeConn) RemoteHeader() http.Header { return c.header }

func TestConnToken(t *testing.T) {
	for name, tc := range map[string]struct {
		query  string
		header http.Header
		want   string
	}{
		"query":  {query: "token=abc", header: http.Header{"Authorization": {"Bearer xyz"}}, want: "abc"},
		"bearer": {header: http.Header{"Authorization": {"Bearer xyz"}}, want: "xyz"},
		"cookie": {header: http.Header{"Cookie": {"jwt_session=cookie-token"}}, want: "cookie-token"},
		"none":   {header: http.Header{}, want: ""},
	} {
		c := handshakeConn{u: url.URL{Path: "/socket.io/", RawQuery: tc.query}, header: tc.header}
		if got := connToken(c); got != tc.want {
			t.Errorf("%s: expected %q, got %q", name, tc.want, got)
		}
	}
}
