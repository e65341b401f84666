package bsu

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"studentbsu/internal/components/telemetry"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_session_login         = "session.login"
	report_session_captcha       = "session.captcha"
	report_session_progress_page = "session.progress-page"
	report_session_term_data     = "session.term-data"
	report_session_general_data  = "session.general-data"
	report_session_debt_data     = "session.debt-data"
	report_session_credentials   = "session.credentials-data"
	report_session_http          = "session.http"
)

const (
	loginEndpoint    = "/Login.aspx"
	captchaEndpoint  = "/CaptchaImage.aspx"
	progressEndpoint = "/StudProgress.aspx"
	mainInfoEndpoint = "/MainInfo.aspx"
	resultsEndpoint  = "/Results2.aspx"
)

type SessionOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// defaults to DefaultTimeout
	Timeout time.Duration
	// client side rate limit, 0 means unlimited
	RequestsPerSecond float64
	// defaults to DefaultUserAgent
	UserAgent        string
	CloudflareBypass bool

	// non-empty fields replace the matching DefaultLoginTokens / DefaultProgressTokens
	LoginTokens    *FormTokens
	ProgressTokens *FormTokens

	// defaults to a PromptSolver on stdin/stderr
	CaptchaSolver CaptchaSolver
	// directory the captcha image is written to, defaults to os.TempDir()
	CaptchaDir string

	// defaults to telemetry.SlogAPI
	Telemetry telemetry.API
	// receives every http exchange when set
	Output telemetry.InstrumentOutput
}

// Session is a logged in (or about to be) browser session on the student
// portal. Login and page fetches happen lazily on the first accessor that
// needs them and every result is kept for the lifetime of the Session.
type Session struct {
	identity       Identity
	solver         CaptchaSolver
	captchaDir     string
	loginTokens    FormTokens
	progressTokens FormTokens
	http           *resty.Client
	tel            telemetry.API

	mutex           sync.Mutex
	loggedIn        bool
	progressHtml    string
	progressFetched bool

	termData        *TermData
	generalData     *GeneralData
	debtData        *DebtData
	credentialsData *CredentialsData
}

func NewSession(identity Identity, opts SessionOptions) (*Session, error) {
	if identity.Surname == "" {
		return nil, &ConfigurationError{Reason: "surname must be specified"}
	}
	if identity.StudentId == "" && identity.ContractNum == "" {
		return nil, &ConfigurationError{Reason: "either student id or contract number must be specified"}
	}

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.CaptchaSolver == nil {
		opts.CaptchaSolver = NewPromptSolver(os.Stdin, os.Stderr)
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.SlogAPI{}
	}
	tel := telemetry.NewScopedAPI("bsu_scraper", opts.Telemetry)

	loginTokens, err := DefaultLoginTokens.withOverrides(opts.LoginTokens)
	if err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("login tokens: %s", err)}
	}
	progressTokens, err := DefaultProgressTokens.withOverrides(opts.ProgressTokens)
	if err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("progress tokens: %s", err)}
	}

	httpClient, err := newHttpClient(opts, tel)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	return &Session{
		identity:       identity,
		solver:         opts.CaptchaSolver,
		captchaDir:     opts.CaptchaDir,
		loginTokens:    loginTokens,
		progressTokens: progressTokens,
		http:           httpClient,
		tel:            tel,
	}, nil
}

// LoggedIn reports whether a login has succeeded. It never goes back to false.
func (s *Session) LoggedIn() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.loggedIn
}

// Login logs in unless the session already is. A failed attempt leaves the
// session logged out, so calling Login (or any accessor) again retries with
// a fresh captcha.
func (s *Session) Login(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.ensureLogin(ctx)
}

func (s *Session) checkResponse(res *resty.Response, endpoint string) error {
	if res.IsError() {
		err := fmt.Errorf("%s: unexpected status %s", endpoint, res.Status())
		s.tel.ReportBroken(report_session_http, err)
		return err
	}
	return nil
}

func (s *Session) get(ctx context.Context, endpoint string) (string, error) {
	res, err := s.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return "", err
	}
	err = s.checkResponse(res, endpoint)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

func (s *Session) postForm(ctx context.Context, endpoint string, form map[string]string) (string, error) {
	res, err := s.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(endpoint)
	if err != nil {
		return "", err
	}
	err = s.checkResponse(res, endpoint)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

// solveCaptcha downloads a captcha image into a private temp file and hands
// its absolute path to the solver. The file is removed afterwards.
func (s *Session) solveCaptcha(ctx context.Context) (string, error) {
	res, err := s.http.R().
		SetContext(ctx).
		Get(captchaEndpoint)
	if err != nil {
		return "", fmt.Errorf("fetch captcha: %w", err)
	}
	err = s.checkResponse(res, captchaEndpoint)
	if err != nil {
		return "", err
	}

	file, err := os.CreateTemp(s.captchaDir, "captcha-*.jpg")
	if err != nil {
		return "", fmt.Errorf("create captcha file: %w", err)
	}
	defer os.Remove(file.Name())

	_, err = file.Write(res.Body())
	closeErr := file.Close()
	if err != nil {
		return "", fmt.Errorf("write captcha file: %w", err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("write captcha file: %w", closeErr)
	}

	imagePath, err := filepath.Abs(file.Name())
	if err != nil {
		return "", err
	}

	answer, err := s.solver.Solve(ctx, imagePath)
	if err != nil {
		return "", fmt.Errorf("solve captcha: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func (s *Session) ensureLogin(ctx context.Context) error {
	if s.loggedIn {
		return nil
	}

	loginError := func(err error) error {
		return fmt.Errorf("bsu scraper: login failed: %w", err)
	}

	// sets the session cookie the captcha and the postback are tied to
	_, err := s.get(ctx, loginEndpoint)
	if err != nil {
		s.tel.ReportBroken(report_session_login, fmt.Errorf("login page request: %w", err))
		return loginError(err)
	}

	answer, err := s.solveCaptcha(ctx)
	if err != nil {
		s.tel.ReportBroken(report_session_captcha, err)
		return loginError(err)
	}

	form := map[string]string{
		"tbFam":        s.identity.Surname,
		"tbNumStud":    s.identity.StudentId,
		"tbNumDogovor": s.identity.ContractNum,
		"TextBox1":     answer,
		"Button1":      "Вход",
	}
	s.loginTokens.apply(form)

	page, err := s.postForm(ctx, loginEndpoint, form)
	if err != nil {
		s.tel.ReportBroken(report_session_login, fmt.Errorf("login request: %w", err))
		return loginError(err)
	}

	err = checkLoginResponse(page)
	if err != nil {
		switch err.(type) {
		case *InvalidCredentialsError, *InvalidCaptchaError:
			s.tel.ReportWarning(report_session_login, err)
		default:
			s.tel.ReportBroken(report_session_login, err)
		}
		return err
	}

	s.loggedIn = true
	s.tel.ReportDebug("logged in", s.identity.Surname)
	return nil
}

func (s *Session) ensureProgressPage(ctx context.Context) (string, error) {
	if s.progressFetched {
		return s.progressHtml, nil
	}

	form := map[string]string{
		"ctlStudProgress1$cmbSemester": "0",
	}
	s.progressTokens.apply(form)

	page, err := s.postForm(ctx, progressEndpoint, form)
	if err != nil {
		s.tel.ReportBroken(report_session_progress_page, err)
		return "", fmt.Errorf("bsu scraper: fetch progress page: %w", err)
	}

	s.progressHtml = page
	s.progressFetched = true
	s.tel.ReportDebug("fetched progress page", len(page))
	return page, nil
}

func (s *Session) progressPage(ctx context.Context) (string, error) {
	err := s.ensureLogin(ctx)
	if err != nil {
		return "", err
	}
	return s.ensureProgressPage(ctx)
}

// TermData returns the grades of every term. Callers get their own copy.
func (s *Session) TermData(ctx context.Context) (TermData, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.termData == nil {
		page, err := s.progressPage(ctx)
		if err != nil {
			return nil, err
		}
		terms, err := parseTermData(page)
		if err != nil {
			s.tel.ReportBroken(report_session_term_data, err)
			return nil, err
		}
		s.termData = &terms
	}

	return s.termData.clone(), nil
}

func (s *Session) GeneralData(ctx context.Context) (GeneralData, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.generalData == nil {
		page, err := s.progressPage(ctx)
		if err != nil {
			return GeneralData{}, err
		}
		general, err := parseGeneralData(page)
		if err != nil {
			s.tel.ReportBroken(report_session_general_data, err)
			return GeneralData{}, err
		}
		s.generalData = &general
	}

	return *s.generalData, nil
}

func (s *Session) DebtData(ctx context.Context) (DebtData, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.debtData == nil {
		err := s.ensureLogin(ctx)
		if err != nil {
			return DebtData{}, err
		}
		page, err := s.get(ctx, mainInfoEndpoint)
		if err != nil {
			s.tel.ReportBroken(report_session_debt_data, err)
			return DebtData{}, fmt.Errorf("bsu scraper: fetch main info page: %w", err)
		}
		debt, err := parseDebtData(page)
		if err != nil {
			s.tel.ReportBroken(report_session_debt_data, err)
			return DebtData{}, err
		}
		s.debtData = &debt
	}

	return *s.debtData, nil
}

func (s *Session) CredentialsData(ctx context.Context) (CredentialsData, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.credentialsData == nil {
		err := s.ensureLogin(ctx)
		if err != nil {
			return CredentialsData{}, err
		}
		page, err := s.get(ctx, resultsEndpoint)
		if err != nil {
			s.tel.ReportBroken(report_session_credentials, err)
			return CredentialsData{}, fmt.Errorf("bsu scraper: fetch results page: %w", err)
		}
		credentials, err := parseCredentialsData(page, s.identity.Surname)
		if err != nil {
			s.tel.ReportBroken(report_session_credentials, err)
			return CredentialsData{}, err
		}
		s.credentialsData = &credentials
	}

	return *s.credentialsData, nil
}
