package sources

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/rciovati/safeincloud-to-1password/internal/model"
	"github.com/rciovati/safeincloud-to-1password/internal/security"
)

// SafeInCloudSource implements the Source interface for SafeInCloud XML
// exports. The export is a single <database> document containing <card>
// elements; embedded <image> and <file> elements carry base64 payloads.
//
// Go's encoding/xml does not resolve external entities or process DTDs,
// so parsing untrusted exports is safe from XXE by construction.
type SafeInCloudSource struct {
	filePath string
	isOpen   bool
	doc      *xmlDatabase
	labels   map[string]string
	cards    []model.Card
}

// xmlDatabase mirrors the root <database> element of an export.
type xmlDatabase struct {
	XMLName xml.Name   `xml:"database"`
	Labels  []xmlLabel `xml:"label"`
	Cards   []xmlCard  `xml:"card"`
}

type xmlLabel struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type xmlCard struct {
	Title    string     `xml:"title,attr"`
	Deleted  string     `xml:"deleted,attr"`
	Template string     `xml:"template,attr"`
	Fields   []xmlField `xml:"field"`
	Notes    string     `xml:"notes"`
	LabelID  string     `xml:"label_id"`
	Images   []string   `xml:"image"`
	Files    []xmlFile  `xml:"file"`
}

type xmlField struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type xmlFile struct {
	Name string `xml:"name,attr"`
	Data string `xml:",chardata"`
}

// NewSafeInCloudSource creates a new SafeInCloud source adapter.
func NewSafeInCloudSource() *SafeInCloudSource {
	return &SafeInCloudSource{}
}

// Name returns the unique identifier for this source.
func (s *SafeInCloudSource) Name() string {
	return "safeincloud"
}

// Description returns a human-readable description.
func (s *SafeInCloudSource) Description() string {
	return "SafeInCloud XML exports (.xml)"
}

// SupportedExtensions returns file extensions this source handles.
func (s *SafeInCloudSource) SupportedExtensions() []string {
	return []string{".xml"}
}

// Detect checks if the given path is a SafeInCloud export.
func (s *SafeInCloudSource) Detect(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, &ErrFileNotFound{Path: path}
		}
		return 0, err
	}

	if info.IsDir() {
		return 0, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xml" {
		return 0, nil
	}

	// Sniff the document root
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	if bytes.Contains(head[:n], []byte("<database")) {
		return 90, nil
	}

	// Some other XML document
	return 10, nil
}

// Open parses the export file. A document that fails to parse aborts the
// run with an *ErrInvalidFormat; there is no partial recovery from
// malformed XML.
func (s *SafeInCloudSource) Open(path string, opts OpenOptions) error {
	if s.isOpen {
		return ErrAlreadyOpen
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ErrFileNotFound{Path: path}
		}
		return err
	}

	if info.IsDir() {
		return &ErrInvalidFormat{
			Source:  s.Name(),
			Path:    path,
			Details: "path must be a file, not a directory",
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc xmlDatabase
	if err := xml.Unmarshal(data, &doc); err != nil {
		return &ErrInvalidFormat{
			Source:  s.Name(),
			Path:    path,
			Details: "failed to parse XML",
			Err:     err,
		}
	}

	labels := make(map[string]string, len(doc.Labels))
	for _, label := range doc.Labels {
		labels[label.ID] = label.Name
	}

	s.filePath = path
	s.doc = &doc
	s.labels = labels
	s.isOpen = true
	s.cards = nil

	return nil
}

// Read converts all cards from the parsed document, in document order.
// Cards marked deleted="true" are dropped. Base64 payloads that fail to
// decode are reported through *ErrPartialRead with the card's title and
// index; the card itself is kept without the broken attachment.
func (s *SafeInCloudSource) Read() ([]model.Card, error) {
	if !s.isOpen {
		return nil, ErrNotOpen
	}

	if s.cards != nil {
		return s.cards, nil
	}

	var cards []model.Card
	partialErr := &ErrPartialRead{
		Source: s.Name(),
	}

	for i, xc := range s.doc.Cards {
		if xc.Deleted == "true" {
			continue
		}

		partialErr.TotalCards++
		card, ok := s.convertCard(xc, i, partialErr)
		if ok {
			partialErr.ReadCards++
		}
		cards = append(cards, card)
	}

	s.cards = cards

	if partialErr.HasFailures() {
		return cards, partialErr
	}

	return cards, nil
}

// Close wipes decoded attachment data and releases the parsed document.
func (s *SafeInCloudSource) Close() error {
	for i := range s.cards {
		for j := range s.cards[i].Attachments {
			security.Wipe(&s.cards[i].Attachments[j].Data)
		}
	}
	s.isOpen = false
	s.filePath = ""
	s.doc = nil
	s.labels = nil
	s.cards = nil
	return nil
}

// convertCard maps one <card> element onto a model.Card. The returned bool
// is false when any attachment payload failed to decode.
func (s *SafeInCloudSource) convertCard(xc xmlCard, index int, partialErr *ErrPartialRead) (model.Card, bool) {
	card := model.Card{
		ID:       generateCardID(),
		Title:    xc.Title,
		Notes:    xc.Notes,
		Template: xc.Template == "true",
	}

	if xc.LabelID != "" {
		card.Group = s.labels[strings.TrimSpace(xc.LabelID)]
	}

	// The typed login/password/website fields map to the built-in item
	// fields; everything else stays a named custom field.
	for _, f := range xc.Fields {
		switch f.Type {
		case "login":
			if card.Username == "" {
				card.Username = f.Value
				continue
			}
		case "password":
			if card.Password == "" {
				card.Password = f.Value
				continue
			}
		case "website":
			if card.URL == "" {
				card.URL = f.Value
				continue
			}
		}
		card.Fields = append(card.Fields, model.Field{Name: f.Name, Value: f.Value})
	}

	clean := true
	title := card.DisplayTitle()

	for j, payload := range xc.Images {
		data, err := decodeBase64Payload(payload)
		if err != nil {
			partialErr.AddFailure(fmt.Sprintf("card %q (index %d): image %d: %v", title, index, j+1, err), err)
			clean = false
			continue
		}
		if data == nil {
			continue
		}
		card.Attachments = append(card.Attachments, model.Attachment{
			Data:  data,
			Image: true,
		})
	}

	for j, file := range xc.Files {
		data, err := decodeBase64Payload(file.Data)
		if err != nil {
			partialErr.AddFailure(fmt.Sprintf("card %q (index %d): file %d: %v", title, index, j+1, err), err)
			clean = false
			continue
		}
		if data == nil {
			continue
		}
		name := strings.TrimSpace(file.Name)
		if name == "" {
			name = fmt.Sprintf("file_%d", j+1)
		}
		card.Attachments = append(card.Attachments, model.Attachment{
			Name: name,
			Data: data,
		})
	}

	card.Sanitize()
	return card, clean
}

// decodeBase64Payload decodes a base64 payload, tolerating embedded
// whitespace and missing padding. Some exports are not strictly padded.
// An empty payload decodes to nil with no error.
func decodeBase64Payload(payload string) ([]byte, error) {
	compact := strings.Join(strings.Fields(payload), "")
	if compact == "" {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(compact)
	if err == nil {
		return data, nil
	}

	data, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(compact, "="))
	if rawErr == nil {
		return data, nil
	}

	return nil, fmt.Errorf("invalid base64 payload: %w", err)
}

// generateCardID generates a base64url-encoded UUID. SafeInCloud exports
// carry no stable per-card identifier, so each run mints fresh ones.
func generateCardID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// init registers the SafeInCloud source with the default registry.
func init() {
	RegisterDefault(NewSafeInCloudSource())
}

// Ensure SafeInCloudSource implements Source interface
var _ Source = (*SafeInCloudSource)(nil)
