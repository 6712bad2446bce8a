package sources

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleExport = `<?xml version="1.0" encoding="utf-8"?>
<database>
  <label id="1" name="Finance" />
  <label id="2" name="Work" />
  <card title="Bank">
    <label_id>1</label_id>
    <field name="Login" type="login">alice</field>
    <field name="Password" type="password">secret</field>
    <field name="Website" type="website">https://bank.example</field>
    <field name="PIN" type="pin">1234</field>
    <notes>main account</notes>
  </card>
  <card title="Old card" deleted="true">
    <field name="Login" type="login">ghost</field>
  </card>
  <card title="Login Template" template="true">
    <field name="Login" type="login"></field>
  </card>
  <card title="Mail">
    <label_id>2</label_id>
    <field name="Login" type="login">bob</field>
    <field name="Password" type="password">hunter2</field>
  </card>
</database>`

func writeExport(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "export.xml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write export: %v", err)
	}
	return path
}

func TestSafeInCloudSource_Interface(t *testing.T) {
	s := NewSafeInCloudSource()

	if s.Name() != "safeincloud" {
		t.Errorf("Name() = %v, want safeincloud", s.Name())
	}

	if s.Description() == "" {
		t.Error("Description() should not be empty")
	}

	exts := s.SupportedExtensions()
	if len(exts) != 1 || exts[0] != ".xml" {
		t.Errorf("SupportedExtensions() = %v, want [.xml]", exts)
	}
}

func TestSafeInCloudSource_Detect(t *testing.T) {
	s := NewSafeInCloudSource()

	t.Run("Non-existent path", func(t *testing.T) {
		_, err := s.Detect("/nonexistent/export.xml")
		if err == nil {
			t.Error("Expected error for non-existent path")
		}
		if !IsNotFound(err) {
			t.Errorf("Expected not found error, got %v", err)
		}
	})

	t.Run("Directory instead of file", func(t *testing.T) {
		confidence, err := s.Detect(t.TempDir())
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if confidence != 0 {
			t.Errorf("Detect() on directory should return 0, got %d", confidence)
		}
	})

	t.Run("Wrong extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export.csv")
		if err := os.WriteFile(path, []byte("a,b"), 0o600); err != nil {
			t.Fatal(err)
		}

		confidence, err := s.Detect(path)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if confidence != 0 {
			t.Errorf("Detect() on .csv file should return 0, got %d", confidence)
		}
	})

	t.Run("SafeInCloud export", func(t *testing.T) {
		path := writeExport(t, sampleExport)

		confidence, err := s.Detect(path)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if confidence != 90 {
			t.Errorf("Detect() on export should return 90, got %d", confidence)
		}
	})

	t.Run("Other XML document", func(t *testing.T) {
		path := writeExport(t, `<?xml version="1.0"?><feed></feed>`)

		confidence, err := s.Detect(path)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if confidence != 10 {
			t.Errorf("Detect() on other XML should return 10, got %d", confidence)
		}
	})
}

func TestSafeInCloudSource_Open(t *testing.T) {
	t.Run("Non-existent file", func(t *testing.T) {
		s := NewSafeInCloudSource()
		err := s.Open("/nonexistent/export.xml", OpenOptions{})
		if !IsNotFound(err) {
			t.Errorf("Open() error = %v, want not found", err)
		}
	})

	t.Run("Malformed XML aborts the run", func(t *testing.T) {
		path := writeExport(t, `<database><card title="Broken">`)

		s := NewSafeInCloudSource()
		err := s.Open(path, OpenOptions{})
		if err == nil {
			t.Fatal("Expected error for malformed XML")
		}
		if !IsFormatError(err) {
			t.Errorf("Expected format error, got %v", err)
		}
	})

	t.Run("Double open", func(t *testing.T) {
		path := writeExport(t, sampleExport)

		s := NewSafeInCloudSource()
		if err := s.Open(path, OpenOptions{}); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		if err := s.Open(path, OpenOptions{}); err != ErrAlreadyOpen {
			t.Errorf("Double Open() error = %v, want ErrAlreadyOpen", err)
		}
	})
}

func TestSafeInCloudSource_Read(t *testing.T) {
	t.Run("Read before Open", func(t *testing.T) {
		s := NewSafeInCloudSource()
		_, err := s.Read()
		if err != ErrNotOpen {
			t.Errorf("Read() before Open() error = %v, want ErrNotOpen", err)
		}
	})

	t.Run("Cards in document order, deleted dropped", func(t *testing.T) {
		path := writeExport(t, sampleExport)

		s := NewSafeInCloudSource()
		if err := s.Open(path, OpenOptions{}); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		cards, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}

		if len(cards) != 3 {
			t.Fatalf("len(cards) = %d, want 3", len(cards))
		}

		wantTitles := []string{"Bank", "Login Template", "Mail"}
		for i, want := range wantTitles {
			if cards[i].Title != want {
				t.Errorf("cards[%d].Title = %q, want %q", i, cards[i].Title, want)
			}
		}
	})

	t.Run("Built-in fields mapped", func(t *testing.T) {
		path := writeExport(t, sampleExport)

		s := NewSafeInCloudSource()
		if err := s.Open(path, OpenOptions{}); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		cards, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}

		bank := cards[0]
		if bank.Username != "alice" {
			t.Errorf("Username = %q, want %q", bank.Username, "alice")
		}
		if bank.Password != "secret" {
			t.Errorf("Password = %q, want %q", bank.Password, "secret")
		}
		if bank.URL != "https://bank.example" {
			t.Errorf("URL = %q, want %q", bank.URL, "https://bank.example")
		}
		if bank.Notes != "main account" {
			t.Errorf("Notes = %q, want %q", bank.Notes, "main account")
		}
		if bank.Group != "Finance" {
			t.Errorf("Group = %q, want %q", bank.Group, "Finance")
		}
		if bank.ID == "" {
			t.Error("ID should be generated")
		}

		// The PIN field is not a built-in type and stays a custom field
		if len(bank.Fields) != 1 || bank.Fields[0].Name != "PIN" || bank.Fields[0].Value != "1234" {
			t.Errorf("Fields = %v, want single PIN field", bank.Fields)
		}
	})

	t.Run("Template cards marked", func(t *testing.T) {
		path := writeExport(t, sampleExport)

		s := NewSafeInCloudSource()
		if err := s.Open(path, OpenOptions{}); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		cards, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}

		if !cards[1].Template {
			t.Error("Template card not marked")
		}
		if cards[0].Template || cards[2].Template {
			t.Error("Regular cards wrongly marked as templates")
		}
	})

	t.Run("Read is repeatable", func(t *testing.T) {
		path := writeExport(t, sampleExport)

		s := NewSafeInCloudSource()
		if err := s.Open(path, OpenOptions{}); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		first, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		second, err := s.Read()
		if err != nil {
			t.Fatalf("second Read() error = %v", err)
		}
		if len(first) != len(second) {
			t.Errorf("repeated Read() returned %d cards, want %d", len(second), len(first))
		}
	})
}

func TestSafeInCloudSource_Attachments(t *testing.T) {
	pngData := []byte("\x89PNG\r\n\x1a\nfakeimagedata")
	pngB64 := base64.StdEncoding.EncodeToString(pngData)

	t.Run("Images and files decoded", func(t *testing.T) {
		export := `<database>
  <card title="Passport">
    <image>` + pngB64 + `</image>
    <file name="scan.pdf">` + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 data")) + `</file>
  </card>
</database>`
		path := writeExport(t, export)

		s := NewSafeInCloudSource()
		if err := s.Open(path, OpenOptions{}); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		cards, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}

		if len(cards) != 1 {
			t.Fatalf("len(cards) = %d, want 1", len(cards))
		}
		atts := cards[0].Attachments
		if len(atts) != 2 {
			t.Fatalf("len(Attachments) = %d, want 2", len(atts))
		}
		if !atts[0].Image || atts[0].Name != "" {
			t.Errorf("Attachments[0] = %+v, want unnamed image", atts[0])
		}
		if string(atts[0].Data) != string(pngData) {
			t.Error("image payload does not round-trip")
		}
		if atts[1].Image || atts[1].Name != "scan.pdf" {
			t.Errorf("Attachments[1] = %+v, want named file scan.pdf", atts[1])
		}
	})

	t.Run("Payload with whitespace and missing padding", func(t *testing.T) {
		raw := []byte("hello attachments")
		b64 := base64.StdEncoding.EncodeToString(raw)
		// Split across lines and strip padding, like loose exports do
		loose := strings.TrimRight(b64[:8]+"\n  "+b64[8:], "=")

		export := `<database><card title="Loose"><image>` + loose + `</image></card></database>`
		path := writeExport(t, export)

		s := NewSafeInCloudSource()
		if err := s.Open(path, OpenOptions{}); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		cards, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if len(cards[0].Attachments) != 1 {
			t.Fatalf("len(Attachments) = %d, want 1", len(cards[0].Attachments))
		}
		if string(cards[0].Attachments[0].Data) != string(raw) {
			t.Errorf("decoded payload = %q, want %q", cards[0].Attachments[0].Data, raw)
		}
	})

	t.Run("Invalid payload reported, run continues", func(t *testing.T) {
		export := `<database>
  <card title="Broken">
    <image>!!! not base64 !!!</image>
  </card>
  <card title="Fine">
    <image>` + pngB64 + `</image>
  </card>
</database>`
		path := writeExport(t, export)

		s := NewSafeInCloudSource()
		if err := s.Open(path, OpenOptions{}); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		cards, err := s.Read()
		if err == nil {
			t.Fatal("Expected partial read error")
		}
		if !IsPartialRead(err) {
			t.Fatalf("Expected partial read error, got %v", err)
		}
		if !strings.Contains(err.Error(), "Broken") {
			t.Errorf("partial read error should name the card: %v", err)
		}

		// Both cards are still returned; only the broken attachment is lost
		if len(cards) != 2 {
			t.Fatalf("len(cards) = %d, want 2", len(cards))
		}
		if len(cards[0].Attachments) != 0 {
			t.Errorf("broken card should have no attachments, got %d", len(cards[0].Attachments))
		}
		if len(cards[1].Attachments) != 1 {
			t.Errorf("intact card should keep its attachment, got %d", len(cards[1].Attachments))
		}
	})

	t.Run("Empty payload skipped silently", func(t *testing.T) {
		export := `<database><card title="Empty"><image>   </image></card></database>`
		path := writeExport(t, export)

		s := NewSafeInCloudSource()
		if err := s.Open(path, OpenOptions{}); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		cards, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if len(cards[0].Attachments) != 0 {
			t.Errorf("empty payload should produce no attachment, got %d", len(cards[0].Attachments))
		}
	})
}

func TestDecodeBase64Payload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{"Standard", "aGVsbG8=", "hello", false},
		{"No padding", "aGVsbG8", "hello", false},
		{"Embedded whitespace", "aGVs\n bG8=", "hello", false},
		{"Empty", "", "", false},
		{"Whitespace only", " \n\t ", "", false},
		{"Garbage", "!!!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBase64Payload(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeBase64Payload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("decodeBase64Payload() = %q, want %q", got, tt.want)
			}
		})
	}
}
