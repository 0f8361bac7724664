package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxPartBytes caps how much of a single archive member is inflated.
const maxPartBytes = 64 << 20

func parseDOCX(content []byte) (parsed, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return parsed{}, fmt.Errorf("open zip: %w", err)
	}
	body := findZipFile(zr, "word/document.xml")
	if body == nil {
		return parsed{}, errors.New("word/document.xml not found in archive")
	}
	text, err := zipParagraphs(body, "t", "p")
	if err != nil {
		return parsed{}, err
	}

	p := parsed{text: text}
	if core := findZipFile(zr, "docProps/core.xml"); core != nil {
		meta, err := zipMetadata(core)
		if err != nil {
			return parsed{}, err
		}
		p.title = meta.first("title")
		p.author = meta.first("creator")
		p.keywords = meta.first("keywords")
		p.language = meta.first("language")
		p.date = meta.first("created")
	}
	return p, nil
}

func parseODT(content []byte) (parsed, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return parsed{}, fmt.Errorf("open zip: %w", err)
	}
	body := findZipFile(zr, "content.xml")
	if body == nil {
		return parsed{}, errors.New("content.xml not found in archive")
	}
	text, err := zipParagraphs(body, "", "p", "h")
	if err != nil {
		return parsed{}, err
	}

	p := parsed{text: text}
	if mf := findZipFile(zr, "meta.xml"); mf != nil {
		meta, err := zipMetadata(mf)
		if err != nil {
			return parsed{}, err
		}
		p.title = meta.first("title")
		p.author = meta.first("initial-creator", "creator")
		p.keywords = strings.Join(meta["keyword"], ", ")
		p.language = meta.first("language")
		p.date = meta.first("creation-date", "date")
	}
	return p, nil
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readZipFile(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, limit))
}

// zipParagraphs walks an XML part and emits one line per paragraph element.
// When textElem is set only character data inside that element counts,
// otherwise everything inside a paragraph does.
func zipParagraphs(f *zip.File, textElem string, paraElems ...string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	isPara := func(local string) bool {
		for _, p := range paraElems {
			if p == local {
				return true
			}
		}
		return false
	}

	dec := xml.NewDecoder(io.LimitReader(rc, maxPartBytes))
	var (
		out, cur strings.Builder
		depth    int
		inText   bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", f.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch local := t.Name.Local; {
			case isPara(local):
				if depth == 0 {
					cur.Reset()
				}
				depth++
			case local == textElem:
				inText = true
			case depth > 0 && local == "tab":
				cur.WriteByte('\t')
			case depth > 0 && (local == "br" || local == "line-break"):
				cur.WriteByte('\n')
			case depth > 0 && local == "s":
				cur.WriteByte(' ')
			}
		case xml.CharData:
			if depth > 0 && (textElem == "" || inText) {
				cur.Write(t)
			}
		case xml.EndElement:
			switch local := t.Name.Local; {
			case local == textElem:
				inText = false
			case isPara(local) && depth > 0:
				depth--
				if depth > 0 {
					cur.WriteByte(' ')
					continue
				}
				if line := strings.TrimSpace(cur.String()); line != "" {
					if out.Len() > 0 {
						out.WriteByte('\n')
					}
					out.WriteString(line)
				}
			}
		}
	}
	return out.String(), nil
}

type zipMeta map[string][]string

func (m zipMeta) first(names ...string) string {
	for _, n := range names {
		if vs := m[n]; len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

// zipMetadata collects the text of every leaf element in a metadata part,
// keyed by local name.
func zipMetadata(f *zip.File) (zipMeta, error) {
	b, err := readZipFile(f, maxPartBytes)
	if err != nil {
		return nil, err
	}
	dec := xml.NewDecoder(bytes.NewReader(b))
	meta := zipMeta{}
	var (
		local string
		text  strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return meta, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			local = t.Name.Local
			text.Reset()
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if t.Name.Local == local {
				if v := strings.TrimSpace(text.String()); v != "" {
					meta[local] = append(meta[local], v)
				}
			}
			local = ""
			text.Reset()
		}
	}
}
