package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Bridge declaration rules
	BrgInfo                          Code = 3000
	BrgInvalidRepresentation         Code = 3001 // representation literal is neither "class" nor "struct"
	BrgMissingRepresentation         Code = 3002 // struct with fields has no representation
	BrgEmptyDeclarationRequestsClass Code = 3003 // struct without fields asks for class
	BrgUnknownAnnotationKey          Code = 3004 // annotation key outside the recognised set
	BrgDuplicateAnnotationKey        Code = 3005 // recognised key set more than once; last one wins

	// I/O
	IOLoadFileError Code = 4001

	// Input manifests and project configuration
	ProjInfo             Code = 5000
	ProjManifestInvalid  Code = 5001
	ProjCacheUnavailable Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:                      "Unknown error",
	BrgInfo:                          "Bridge information",
	BrgInvalidRepresentation:         "Invalid representation",
	BrgMissingRepresentation:         "Missing representation",
	BrgEmptyDeclarationRequestsClass: "Empty struct requests class representation",
	BrgUnknownAnnotationKey:          "Unknown annotation key",
	BrgDuplicateAnnotationKey:        "Duplicate annotation key",
	IOLoadFileError:                  "I/O load file error",
	ProjInfo:                         "Project information",
	ProjManifestInvalid:              "Invalid bridge manifest",
	ProjCacheUnavailable:             "Disk cache unavailable",
}

func (c Code) ID() string {
	ic := int(c)
	switch {
	case ic == 0:
		return "E0000"
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("BRG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
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
