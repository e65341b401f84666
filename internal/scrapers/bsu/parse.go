package bsu

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"studentbsu/internal/components/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// markers the portal puts in the login response
const (
	credentialsErrorMarker = "lError"
	captchaErrorMarker     = "Label6"
	logoutMarker           = "Выход"
)

const (
	termSeparator   = "сессия"
	creditTestTitle = "зачет"
	examTitle       = "экзамен"
	expelledMarker  = "Отчислен"
)

const (
	loginPage    = "Login.aspx"
	progressPage = "StudProgress.aspx"
	mainInfoPage = "MainInfo.aspx"
	resultsPage  = "Results2.aspx"
)

func newDocument(page string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(page))
}

// checkLoginResponse returns nil only when the response shows a logout link.
func checkLoginResponse(page string) error {
	switch {
	case strings.Contains(page, credentialsErrorMarker):
		message, err := loginErrorMessage(page)
		if err != nil {
			return err
		}
		return &InvalidCredentialsError{Message: message}
	case strings.Contains(page, captchaErrorMarker):
		message, err := loginErrorMessage(page)
		if err != nil {
			return err
		}
		return &InvalidCaptchaError{Message: message}
	case strings.Contains(page, logoutMarker):
		return nil
	}
	return &UnrecognizedResponseError{Page: loginPage}
}

func loginErrorMessage(page string) (string, error) {
	doc, err := newDocument(page)
	if err != nil {
		return "", err
	}
	message, ok := htmlutil.FirstText(doc.Find(`font[color="Red"]`))
	if !ok {
		return "", &PageFormatError{Page: loginPage, Detail: "error marker present without an error message"}
	}
	return message, nil
}

var (
	progressTableRegex = regexp.MustCompile(`<table id="ctlStudProgress1_tblProgress".*?>([\s\S]*?)</table>`)
	boldItalicRegex    = regexp.MustCompile(`</?[ib]>`)
	fontRegex          = regexp.MustCompile(`</?font[^<>]*>`)
	subjectRowRegex    = regexp.MustCompile(
		`<td align="left" class="styleLessonBody" title=".*?">(.*?)</td>` +
			`[\s\S]*?` +
			`<td align="center" class="styleZachBody" title=".*?">(.*?)</td>` +
			`[\s\S]*?` +
			`<td align="center" class="styleExamBody" title=".*?">(.*?)</td>`,
	)
)

func parseTermData(page string) (TermData, error) {
	table := progressTableRegex.FindStringSubmatch(page)
	if table == nil {
		return nil, &PageFormatError{Page: progressPage, Detail: "progress table not found"}
	}

	segments := strings.Split(table[1], termSeparator)
	terms := TermData{}
	for _, segment := range segments[1:] {
		segment = boldItalicRegex.ReplaceAllString(segment, "")
		segment = fontRegex.ReplaceAllString(segment, "")

		rows := subjectRowRegex.FindAllStringSubmatch(segment, -1)
		// the first row of every term is its header
		if len(rows) > 0 {
			rows = rows[1:]
		}

		term := []Subject{}
		for _, row := range rows {
			creditTest, creditTestTries := parseGradeCell(row[2], creditTestTitle)
			exam, examTries := parseGradeCell(row[3], examTitle)
			term = append(term, Subject{
				Subject:         strings.TrimSpace(row[1]),
				CreditTest:      creditTest,
				CreditTestTries: creditTestTries,
				Exam:            exam,
				ExamTries:       examTries,
			})
		}
		terms = append(terms, term)
	}

	return terms, nil
}

// parseGradeCell decodes one credit test / exam cell.
//
//   - an html entity (usually &nbsp;) means the subject has no such assessment
//   - the bare assessment title means it is not graded yet
//   - otherwise it is a grade with one ' appended per retake
func parseGradeCell(cell, title string) (string, int) {
	cell = strings.ReplaceAll(cell, " ", "")
	switch {
	case cell == "", cell[0] == '&':
		return "", 0
	case cell == title:
		return "?", 0
	}
	tries := strings.Count(cell, "'") + 1
	return strings.ReplaceAll(cell, "'", ""), tries
}

var generalDataRegex = regexp.MustCompile(
	`<span id="ctlStudProgress1_lbStudName".*?><b>(.*?)</b></span>[\s\S]*` +
		`<span id="ctlStudProgress1_lbStudFacultet".*?>(.*?)</span>[\s\S]*` +
		`<span id="ctlStudProgress1_lbStudKurs".*?>(.) курс, группа (.*?), ` +
		`форма обучения (.*?), специальность: (.*)</span>[\s\S]*средний балл: (.*?)</b>`,
)

func parseGeneralData(page string) (GeneralData, error) {
	groups := generalDataRegex.FindStringSubmatch(page)
	if groups == nil {
		return GeneralData{}, &PageFormatError{Page: progressPage, Detail: "student summary not found"}
	}

	course, err := strconv.Atoi(groups[3])
	if err != nil {
		return GeneralData{}, &PageFormatError{Page: progressPage, Detail: fmt.Sprintf("course %q is not a number", groups[3])}
	}
	averageScore, err := parseDecimal(groups[7])
	if err != nil {
		return GeneralData{}, &PageFormatError{Page: progressPage, Detail: fmt.Sprintf("average score %q is not a number", groups[7])}
	}

	return GeneralData{
		FullName:      groups[1],
		Faculty:       groups[2],
		Course:        course,
		Group:         groups[4],
		EducationForm: groups[5],
		Specialty:     groups[6],
		AverageScore:  averageScore,
	}, nil
}

func parseDebtData(page string) (DebtData, error) {
	doc, err := newDocument(page)
	if err != nil {
		return DebtData{}, err
	}

	amount := func(id string) (float64, error) {
		text, ok := htmlutil.FirstText(doc.Find(fmt.Sprintf("span#%s > b", id)))
		if !ok {
			return 0, &PageFormatError{Page: mainInfoPage, Detail: fmt.Sprintf("span#%s not found", id)}
		}
		if text == "" {
			return 0, nil
		}
		value, err := parseDecimal(text)
		if err != nil {
			return 0, &PageFormatError{Page: mainInfoPage, Detail: fmt.Sprintf("%s amount %q is not a number", id, text)}
		}
		return value, nil
	}

	debt, err := amount("lDolg")
	if err != nil {
		return DebtData{}, err
	}
	fine, err := amount("lPeny")
	if err != nil {
		return DebtData{}, err
	}

	return DebtData{
		Debt:     debt,
		Fine:     fine,
		Expelled: strings.Contains(page, expelledMarker),
	}, nil
}

var credentialsRegex = regexp.MustCompile(`№ договора: (.*?), № студенческого билета (\d{7})`)

func parseCredentialsData(page, surname string) (CredentialsData, error) {
	groups := credentialsRegex.FindStringSubmatch(page)
	if groups == nil {
		return CredentialsData{}, &PageFormatError{Page: resultsPage, Detail: "contract and student id not found"}
	}
	return CredentialsData{
		Surname:     surname,
		ContractNum: groups[1],
		Id:          groups[2],
	}, nil
}

// parseDecimal accepts both "12.5" and "12,5" and ignores spaces used as
// thousands separators.
func parseDecimal(s string) (float64, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)
	return strconv.ParseFloat(s, 64)
}
