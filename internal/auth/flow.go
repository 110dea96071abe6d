package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const donePage = `<!DOCTYPE html>
<html>
<head><title>dayview</title>
<style>
body { font-family: -apple-system, sans-serif; display: flex; justify-content: center;
       align-items: center; height: 100vh; margin: 0; background: #1a1a1a; color: #fff; }
.card { background: #2d2d2d; padding: 40px; border-radius: 12px; text-align: center; }
h1 { color: #4ade80; }
p { color: #a1a1aa; }
</style></head>
<body><div class="card"><h1>Signed in</h1><p>Return to the terminal; this window can be closed.</p></div></body>
</html>
`

// Flow runs the authorization code flow against a loopback redirect.
type Flow struct {
	Config   *oauth2.Config
	Provider string
	Options  []oauth2.AuthCodeOption

	// Open shows the consent page. When it fails the URL is printed.
	Open    func(url string) error
	Out     io.Writer
	Timeout time.Duration
	Log     *zap.Logger
}

type callbackResult struct {
	code string
	err  error
}

// callbackHandler accepts one redirect carrying state and reports its code.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = errors.New("authorization failed: state mismatch")
		case q.Get("code") == "":
			res.err = fmt.Errorf("authorization failed: %s", q.Get("error"))
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			io.WriteString(w, donePage)
		}

		select {
		case results <- res:
		default:
		}
	})
	return mux
}

// Run opens the consent page, waits for the redirect and exchanges the code.
func (f Flow) Run(ctx context.Context) (*oauth2.Token, error) {
	log := f.Log
	if log == nil {
		log = zap.NewNop()
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	out := f.Out
	if out == nil {
		out = io.Discard
	}

	redirect, err := url.Parse(f.Config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("redirect url: %w", err)
	}
	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", redirect.Host, err)
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)
	srv := &http.Server{Handler: callbackHandler(state, results), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- callbackResult{err: err}:
			default:
			}
		}
	}()
	defer srv.Shutdown(context.Background())

	authURL := f.Config.AuthCodeURL(state, f.Options...)
	fmt.Fprintf(out, "🔐 Opening browser for %s authorization...\n\n", f.Provider)
	if f.Open == nil || f.Open(authURL) != nil {
		fmt.Fprintln(out, "⚠️  Couldn't open browser automatically.")
		fmt.Fprintln(out, "   Please open this URL manually:")
		fmt.Fprintln(out, authURL)
	}
	fmt.Fprintln(out, "⏳ Waiting for authorization...")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}
	if res.err != nil {
		return nil, res.err
	}

	log.Debug("authorization code received", zap.String("provider", f.Provider))
	tok, err := f.Config.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}
