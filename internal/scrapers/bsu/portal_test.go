package bsu

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	_ "embed"
)

var (
	//go:embed testdata/login.html
	loginFixture string
	//go:embed testdata/login_success.html
	loginSuccessFixture string
	//go:embed testdata/login_invalid_captcha.html
	loginInvalidCaptchaFixture string
	//go:embed testdata/login_invalid_credentials.html
	loginInvalidCredentialsFixture string
	//go:embed testdata/progress.html
	progressFixture string
	//go:embed testdata/maininfo.html
	mainInfoFixture string
	//go:embed testdata/results.html
	resultsFixture string
)

var captchaImage = []byte{0xff, 0xd8, 0xff, 0xe0, 'f', 'a', 'k', 'e', 0xff, 0xd9}

const (
	testSurname   = "Иванов"
	testStudentId = "1234567"
	testCaptcha   = "48213"
	sessionCookie = "ASP.NET_SessionId"
)

// fakePortal imitates the handful of student.bsu.by pages the session uses.
type fakePortal struct {
	server *httptest.Server

	mutex    sync.Mutex
	requests map[string]int
	// the last form posted to each endpoint
	forms    map[string]url.Values
	loggedIn map[string]bool
	nextId   int

	// overrides the page served after a login postback when non-empty
	loginResponse string
	progressPage  string
}

func newFakePortal(t testing.TB) *fakePortal {
	p := &fakePortal{
		requests:     map[string]int{},
		forms:        map[string]url.Values{},
		loggedIn:     map[string]bool{},
		progressPage: progressFixture,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/Login.aspx", p.handleLogin)
	mux.HandleFunc("/CaptchaImage.aspx", p.handleCaptcha)
	mux.HandleFunc("/StudProgress.aspx", p.authenticated(func(w http.ResponseWriter, r *http.Request) {
		p.write(w, p.progressPage)
	}))
	mux.HandleFunc("/MainInfo.aspx", p.authenticated(func(w http.ResponseWriter, r *http.Request) {
		p.write(w, mainInfoFixture)
	}))
	mux.HandleFunc("/Results2.aspx", p.authenticated(func(w http.ResponseWriter, r *http.Request) {
		p.write(w, resultsFixture)
	}))

	p.server = httptest.NewServer(p.record(mux))
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePortal) count(method, path string) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.requests[method+" "+path]
}

func (p *fakePortal) form(path string) url.Values {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.forms[path]
}

func (p *fakePortal) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			err := r.ParseForm()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		p.mutex.Lock()
		p.requests[r.Method+" "+r.URL.Path]++
		if r.Method == http.MethodPost {
			p.forms[r.URL.Path] = r.PostForm
		}
		p.mutex.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (p *fakePortal) write(w http.ResponseWriter, page string) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (p *fakePortal) sessionId(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (p *fakePortal) authenticated(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.mutex.Lock()
		ok := p.loggedIn[p.sessionId(r)]
		p.mutex.Unlock()
		if !ok {
			// the real portal sends anonymous visitors back to the login form
			p.write(w, loginFixture)
			return
		}
		handler(w, r)
	}
}

func (p *fakePortal) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		p.mutex.Lock()
		p.nextId++
		id := p.nextId
		p.mutex.Unlock()

		http.SetCookie(w, &http.Cookie{
			Name:  sessionCookie,
			Value: url.QueryEscape(string(rune('a' + id))),
			Path:  "/",
		})
		p.write(w, loginFixture)
		return
	}

	if p.loginResponse != "" {
		p.write(w, p.loginResponse)
		return
	}

	switch {
	case r.PostForm.Get("TextBox1") != testCaptcha:
		p.write(w, loginInvalidCaptchaFixture)
	case r.PostForm.Get("tbFam") != testSurname || r.PostForm.Get("tbNumStud") != testStudentId:
		p.write(w, loginInvalidCredentialsFixture)
	default:
		p.mutex.Lock()
		p.loggedIn[p.sessionId(r)] = true
		p.mutex.Unlock()
		p.write(w, loginSuccessFixture)
	}
}

func (p *fakePortal) handleCaptcha(w http.ResponseWriter, r *http.Request) {
	if p.sessionId(r) == "" {
		http.Error(w, "no session", http.StatusForbidden)
		return
	}
	w.Header().Set("content-type", "image/jpeg")
	w.Write(captchaImage)
}
