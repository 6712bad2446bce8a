package sources

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/tobischo/gokeepasslib/v3"

	"github.com/rciovati/safeincloud-to-1password/internal/model"
)

// kdbxSignature is the first four bytes of every KeePass 2.x database.
var kdbxSignature = []byte{0x03, 0xd9, 0xa2, 0x9a}

// reservedEntryKeys are the KeePass string values mapped to built-in
// card slots rather than custom fields.
var reservedEntryKeys = map[string]bool{
	"Title":    true,
	"UserName": true,
	"Password": true,
	"URL":      true,
	"Notes":    true,
}

// KeePassSource reads .kdbx databases. Entries are flattened into cards
// and the containing group path ("Root/Work/Servers") becomes the card
// group, which --tag-groups turns into a 1Password tag.
type KeePassSource struct {
	filePath string
	db       *gokeepasslib.Database
	isOpen   bool
	cards    []model.Card
}

// NewKeePassSource creates a new KeePass source adapter.
func NewKeePassSource() *KeePassSource {
	return &KeePassSource{}
}

func (s *KeePassSource) Name() string {
	return "keepass"
}

func (s *KeePassSource) Description() string {
	return "KeePass 2.x database files (.kdbx)"
}

func (s *KeePassSource) SupportedExtensions() []string {
	return []string{".kdbx"}
}

// Detect checks the extension and the KDBX signature bytes.
func (s *KeePassSource) Detect(path string) (int, error) {
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

	if strings.ToLower(filepath.Ext(path)) != ".kdbx" {
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sig := make([]byte, len(kdbxSignature))
	if _, err := f.Read(sig); err != nil {
		return 0, nil
	}
	if !bytes.Equal(sig, kdbxSignature) {
		return 0, nil
	}

	return 100, nil
}

// Open decrypts the database with the given password and optional key
// file, prompting when Interactive is set and no password was supplied.
func (s *KeePassSource) Open(path string, opts OpenOptions) error {
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

	password := opts.Password
	if password == "" && opts.Interactive && opts.PasswordFunc != nil {
		password, err = opts.PasswordFunc("Enter KeePass database password: ")
		if err != nil {
			return err
		}
	}

	db := gokeepasslib.NewDatabase()
	if err := s.setCredentials(db, password, opts.KeyFilePath); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gokeepasslib.NewDecoder(f).Decode(db); err != nil {
		if looksLikeAuthFailure(err) {
			return &ErrAuthenticationFailed{
				Source: s.Name(),
				Path:   path,
				Reason: "incorrect password or key file",
				Err:    err,
			}
		}
		return &ErrInvalidFormat{
			Source:  s.Name(),
			Path:    path,
			Details: "failed to decode database",
			Err:     err,
		}
	}

	if err := db.UnlockProtectedEntries(); err != nil {
		return &ErrInvalidFormat{
			Source:  s.Name(),
			Path:    path,
			Details: "failed to unlock protected entries",
			Err:     err,
		}
	}

	s.filePath = path
	s.db = db
	s.isOpen = true
	s.cards = nil

	return nil
}

// setCredentials configures password or password+keyfile credentials.
func (s *KeePassSource) setCredentials(db *gokeepasslib.Database, password, keyFilePath string) error {
	if keyFilePath == "" {
		db.Credentials = gokeepasslib.NewPasswordCredentials(password)
		return nil
	}

	keyData, err := os.ReadFile(keyFilePath)
	if err != nil {
		return &ErrFileNotFound{Path: keyFilePath}
	}
	creds, err := gokeepasslib.NewPasswordAndKeyDataCredentials(password, keyData)
	if err != nil {
		return &ErrInvalidFormat{
			Source:  s.Name(),
			Path:    keyFilePath,
			Details: "failed to parse key file",
			Err:     err,
		}
	}
	db.Credentials = creds
	return nil
}

// looksLikeAuthFailure distinguishes bad credentials from a corrupt
// file. The decoder reports both as plain errors, so this matches on
// the message.
func looksLikeAuthFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"password", "credential", "invalid", "hmac"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Read flattens all groups into cards, depth first in database order.
func (s *KeePassSource) Read() ([]model.Card, error) {
	if !s.isOpen {
		return nil, ErrNotOpen
	}
	if s.cards != nil {
		return s.cards, nil
	}

	var cards []model.Card
	for _, group := range s.db.Content.Root.Groups {
		cards = append(cards, s.walkGroup(group, "")...)
	}

	s.cards = cards
	return cards, nil
}

// Close re-locks protected entries and drops the parsed database.
func (s *KeePassSource) Close() error {
	if s.db != nil {
		_ = s.db.LockProtectedEntries()
	}
	s.isOpen = false
	s.filePath = ""
	s.db = nil
	s.cards = nil
	return nil
}

func (s *KeePassSource) walkGroup(group gokeepasslib.Group, parentPath string) []model.Card {
	path := group.Name
	if parentPath != "" {
		path = parentPath + "/" + group.Name
	}

	var cards []model.Card
	for _, entry := range group.Entries {
		if card := s.convertEntry(entry, path); card != nil {
			cards = append(cards, *card)
		}
	}
	for _, sub := range group.Groups {
		cards = append(cards, s.walkGroup(sub, path)...)
	}
	return cards
}

// convertEntry maps one KeePass entry onto a card. Non-reserved string
// values become custom fields in entry order; binaries become named
// attachments. Empty entries are dropped.
func (s *KeePassSource) convertEntry(entry gokeepasslib.Entry, groupPath string) *model.Card {
	card := &model.Card{
		ID:       base64.RawURLEncoding.EncodeToString(entry.UUID[:]),
		Title:    entry.GetTitle(),
		Username: entry.GetContent("UserName"),
		Password: entry.GetPassword(),
		URL:      entry.GetContent("URL"),
		Notes:    entry.GetContent("Notes"),
		Group:    groupPath,
	}

	for _, value := range entry.Values {
		if reservedEntryKeys[value.Key] || value.Value.Content == "" {
			continue
		}
		card.Fields = append(card.Fields, model.Field{
			Name:  value.Key,
			Value: value.Value.Content,
		})
	}

	for _, binary := range entry.Binaries {
		for _, meta := range s.db.Content.Meta.Binaries {
			if meta.ID == binary.Value.ID {
				card.Attachments = append(card.Attachments, model.Attachment{
					Name: binary.Name,
					Data: meta.Content,
				})
				break
			}
		}
	}

	card.Sanitize()
	if card.IsEmpty() {
		return nil
	}
	return card
}

func init() {
	RegisterDefault(NewKeePassSource())
}

var _ Source = (*KeePassSource)(nil)
