package bsu

import "slices"

// Identity is who the session logs in as. At least one of StudentId or
// ContractNum must be set.
type Identity struct {
	Surname     string
	StudentId   string
	ContractNum string
}

// Subject is one row of a term on the progress page.
//
// CreditTest and Exam are empty when the subject has no such assessment and
// "?" when it has one that was not graded yet. The tries count how many
// attempts the student needed, 0 meaning no attempt was recorded.
type Subject struct {
	Subject         string `json:"subject"`
	CreditTest      string `json:"credit_test"`
	CreditTestTries int    `json:"credit_test_tries"`
	Exam            string `json:"exam"`
	ExamTries       int    `json:"exam_tries"`
}

// TermData holds the subjects of each term in the order the portal lists them.
type TermData [][]Subject

func (t TermData) clone() TermData {
	out := make(TermData, len(t))
	for i, term := range t {
		out[i] = slices.Clone(term)
	}
	return out
}

type GeneralData struct {
	FullName      string  `json:"full_name"`
	Faculty       string  `json:"faculty"`
	Course        int     `json:"course"`
	Group         string  `json:"group"`
	EducationForm string  `json:"education_form"`
	Specialty     string  `json:"specialty"`
	AverageScore  float64 `json:"average_score"`
}

type DebtData struct {
	Debt     float64 `json:"debt"`
	Fine     float64 `json:"fine"`
	Expelled bool    `json:"expelled"`
}

type CredentialsData struct {
	Surname     string `json:"surname"`
	ContractNum string `json:"contract_num"`
	Id          string `json:"id"`
}
