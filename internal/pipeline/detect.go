package pipeline

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"racebase/internal"
)

var ErrUnknownKind = errors.New("unknown source kind")

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
)

// DetectKind decides how a source file should be decoded, from its
// extension first and its content when the extension is missing or
// ambiguous. Card and chart XML share an extension and are told apart by
// their markers: charts carry a RACE_DATE attribute and upper-case RACE
// elements, cards carry Race/Starters elements.
func DetectKind(filename string, data []byte) (internal.SourceKind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return internal.KindChartPDF, nil
	case ".xlsx", ".xls":
		return internal.KindEntriesXLSX, nil
	case ".html", ".htm":
		return internal.KindEntriesHTML, nil
	case ".xml":
		return detectXMLKind(data)
	}

	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return internal.KindChartPDF, nil
	case bytes.HasPrefix(data, zipMagic):
		return internal.KindEntriesXLSX, nil
	case looksLikeHTML(data):
		return internal.KindEntriesHTML, nil
	case bytes.Contains(data, []byte("<?xml")) || bytes.Contains(data, []byte("<Race")) || bytes.Contains(data, []byte("<RACE")):
		return detectXMLKind(data)
	}
	return "", ErrUnknownKind
}

func detectXMLKind(data []byte) (internal.SourceKind, error) {
	switch {
	case bytes.Contains(data, []byte("RACE_DATE")) || bytes.Contains(data, []byte("<RACE ")):
		return internal.KindChartXML, nil
	case bytes.Contains(data, []byte("<Race")) || bytes.Contains(data, []byte("<Starters")):
		return internal.KindCardXML, nil
	}
	return "", ErrUnknownKind
}

func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > 2048 {
		head = head[:2048]
	}
	lower := bytes.ToLower(head)
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<table"))
}
