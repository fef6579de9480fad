package diag

// Note adds context to a diagnostic, optionally about another type.
type Note struct {
	Subject string
	Msg     string
}

// Diagnostic is one finding about a type. Subject is the fully qualified
// type name the finding is about, or a file path for catalog problems.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Subject  string
	Notes    []Note
}

func New(sev Severity, code Code, subject, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Subject:  subject,
		Message:  msg,
	}
}

func NewError(code Code, subject, msg string) Diagnostic {
	return New(SevError, code, subject, msg)
}

func (d Diagnostic) WithNote(subject, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Subject: subject, Msg: msg})
	return d
}
