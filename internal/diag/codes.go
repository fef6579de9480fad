package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// catalog loading
	CatInfo          Code = 1000
	CatParseError    Code = 1001
	CatNotFound      Code = 1002
	CatDuplicateDecl Code = 1003

	// by-value analysis
	ByvInfo                 Code = 2000
	ByvDeclarationMissing   Code = 2001
	ByvDependentTypeUnsafe  Code = 2002
	ByvHasVirtualDispatch   Code = 2003
	ByvBlocklisted          Code = 2004
	ByvComplexOrOpaqueAlias Code = 2005
	ByvNotByValueSafe       Code = 2006
	ByvAliasCycle           Code = 2007
	ByvConfirmed            Code = 2008
	ByvAnalysisAborted      Code = 2009

	// io
	IOLoadFileError Code = 4001
	IOSnapshotError Code = 4002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		CatInfo:                 "Catalog information",
		CatParseError:           "Catalog could not be parsed",
		CatNotFound:             "No catalog found",
		CatDuplicateDecl:        "Declaration overwrites an earlier record",
		ByvInfo:                 "By-value analysis information",
		ByvDeclarationMissing:   "Declaration missing",
		ByvDependentTypeUnsafe:  "Dependent type is not by-value safe",
		ByvHasVirtualDispatch:   "Type has virtual functions",
		ByvBlocklisted:          "Type is on the blocklist",
		ByvComplexOrOpaqueAlias: "Typedef to a complex or opaque type",
		ByvNotByValueSafe:       "Known type is not by-value safe",
		ByvAliasCycle:           "Typedef cycle",
		ByvConfirmed:            "Type confirmed by-value safe",
		ByvAnalysisAborted:      "Analysis aborted",
		IOLoadFileError:         "I/O error loading file",
		IOSnapshotError:         "I/O error writing snapshot",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CAT%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("BYV%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
