package dataset

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

type workbookXML struct {
	Sheets []struct {
		Name    string `xml:"name,attr"`
		SheetID int    `xml:"sheetId,attr"`
		RID     string `xml:"id,attr"`
	} `xml:"sheets>sheet"`
}

type relsXML struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type sharedStringsXML struct {
	Items []struct {
		T    string `xml:"t"`
		Runs []struct {
			T string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

// readSheetRows returns every row of the selected worksheet. Rows end at their
// last populated cell; gaps before it are "". sheetIndex is 1-based.
func readSheetRows(p, sheetName string, sheetIndex int) ([][]string, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	var wb workbookXML
	if err := unmarshalZipXML(files, "xl/workbook.xml", &wb); err != nil {
		return nil, err
	}
	var rels relsXML
	if err := unmarshalZipXML(files, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	var sst sharedStringsXML
	if _, ok := files["xl/sharedStrings.xml"]; ok {
		if err := unmarshalZipXML(files, "xl/sharedStrings.xml", &sst); err != nil {
			return nil, err
		}
	}
	shared := make([]string, len(sst.Items))
	for i, si := range sst.Items {
		if len(si.Runs) == 0 {
			shared[i] = si.T
			continue
		}
		var b strings.Builder
		for _, r := range si.Runs {
			b.WriteString(r.T)
		}
		shared[i] = b.String()
	}

	target, err := resolveSheet(wb, rels, sheetName, sheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%w in workbook %s", err, path.Base(p))
	}
	f, ok := files[target]
	if !ok {
		return nil, fmt.Errorf("worksheet %s missing from archive", target)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open worksheet: %w", err)
	}
	defer rc.Close()
	return readRows(rc, shared)
}

func resolveSheet(wb workbookXML, rels relsXML, name string, index int) (string, error) {
	targets := make(map[string]string, len(rels.Rels))
	for _, r := range rels.Rels {
		targets[r.ID] = sheetPath(r.Target)
	}
	if name != "" {
		names := make([]string, 0, len(wb.Sheets))
		for _, s := range wb.Sheets {
			if strings.EqualFold(s.Name, name) {
				if t, ok := targets[s.RID]; ok {
					return t, nil
				}
			}
			names = append(names, s.Name)
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", name, strings.Join(names, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.Sheets {
		if s.SheetID == index {
			if t, ok := targets[s.RID]; ok {
				return t, nil
			}
		}
	}
	if index <= len(wb.Sheets) {
		if t, ok := targets[wb.Sheets[index-1].RID]; ok {
			return t, nil
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

// sheetPath turns a relationship target such as "/xl/worksheets/sheet1.xml"
// or "worksheets/sheet1.xml" into the archive entry name.
func sheetPath(target string) string {
	target = strings.TrimPrefix(target, "/")
	if strings.HasPrefix(target, "xl/") {
		return target
	}
	return path.Join("xl", target)
}

func unmarshalZipXML(files map[string]*zip.File, name string, v any) error {
	f, ok := files[name]
	if !ok {
		return fmt.Errorf("xlsx part %s missing", name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := xml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

type cellXML struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	V      string `xml:"v"`
	Inline struct {
		T string `xml:"t"`
	} `xml:"is"`
}

// readRows streams <row> elements so large sheets are not unmarshalled at once.
func readRows(r io.Reader, shared []string) ([][]string, error) {
	dec := xml.NewDecoder(r)
	var (
		rows [][]string
		cur  []string
		in   bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse worksheet: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "row":
				in, cur = true, nil
			case "c":
				if !in {
					continue
				}
				var c cellXML
				if err := dec.DecodeElement(&c, &el); err != nil {
					return nil, fmt.Errorf("parse cell: %w", err)
				}
				col := columnIndex(c.Ref)
				if col < 0 {
					col = len(cur)
				}
				for len(cur) <= col {
					cur = append(cur, "")
				}
				cur[col] = cellText(c, shared)
			}
		case xml.EndElement:
			if el.Name.Local == "row" && in {
				rows = append(rows, cur)
				in = false
			}
		}
	}
	return rows, nil
}

func cellText(c cellXML, shared []string) string {
	switch c.Type {
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(c.V))
		if err != nil || i < 0 || i >= len(shared) {
			return ""
		}
		return shared[i]
	case "inlineStr":
		return c.Inline.T
	default:
		return c.V
	}
}

// columnIndex converts a cell reference like "C12" to a 0-based column.
func columnIndex(ref string) int {
	idx := 0
	n := 0
	for _, r := range ref {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		if r < 'A' || r > 'Z' {
			break
		}
		idx = idx*26 + int(r-'A'+1)
		n++
	}
	if n == 0 {
		return -1
	}
	return idx - 1
}
