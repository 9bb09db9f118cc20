// Package backup defines the JSON coordinator backup document: network
// parameters plus an exhaustive NVRAM image, round-trip stable and
// schema-validated before restore.
package backup

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urmzd/znp/pkg/nvram"
)

// Format and version stamped into every document's metadata.
const (
	FormatName    = "znp-coordinator-backup"
	FormatVersion = 1
)

// Metadata describes the document itself.
type Metadata struct {
	Format    string    `json:"format"`
	Version   int       `json:"version"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Child is one device joined directly to the coordinator.
type Child struct {
	IEEE    string `json:"ieee"`
	Nwk     uint16 `json:"nwk"`
	LinkKey string `json:"link_key,omitempty"`
}

// Network is the logical network description.
type Network struct {
	PanID         uint16  `json:"pan_id"`
	ExtendedPanID string  `json:"extended_pan_id"`
	Channel       uint8   `json:"channel"`
	ChannelMask   uint32  `json:"channel_mask"`
	NwkUpdateID   uint8   `json:"nwk_update_id"`
	NetworkKey    string  `json:"network_key"`
	TCLinkKey     string  `json:"tc_link_key"`
	KeySequence   uint8   `json:"key_sequence"`
	Children      []Child `json:"children"`
}

// NVRAM carries the raw item image, hex-encoded. Legacy items are keyed
// by hex id, extended items by "sysid:itemid:subid".
type NVRAM struct {
	Legacy   map[string]string `json:"legacy"`
	Extended map[string]string `json:"extended"`
}

// Document is the full backup file.
type Document struct {
	Metadata Metadata `json:"metadata"`
	Network  Network  `json:"network"`
	NVRAM    NVRAM    `json:"nvram"`
}

// New returns an empty document stamped with the current format.
func New(source string, now time.Time) *Document {
	return &Document{
		Metadata: Metadata{
			Format:    FormatName,
			Version:   FormatVersion,
			Source:    source,
			Timestamp: now.UTC(),
		},
		NVRAM: NVRAM{
			Legacy:   map[string]string{},
			Extended: map[string]string{},
		},
	}
}

// Marshal renders the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal parses and schema-validates a backup file.
func Unmarshal(data []byte) (*Document, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, &SchemaError{Reason: err.Error()}
	}
	return &d, nil
}

// SetSnapshot copies an NVRAM snapshot into the document.
func (d *Document) SetSnapshot(snap *nvram.Snapshot) {
	d.NVRAM.Legacy = make(map[string]string, len(snap.Legacy))
	for id, value := range snap.Legacy {
		d.NVRAM.Legacy[fmt.Sprintf("0x%04x", uint16(id))] = hex.EncodeToString(value)
	}
	d.NVRAM.Extended = make(map[string]string, len(snap.Extended))
	for key, value := range snap.Extended {
		d.NVRAM.Extended[key.String()] = hex.EncodeToString(value)
	}
}

// Snapshot reconstructs the NVRAM snapshot for the given flavour.
func (d *Document) Snapshot(f nvram.Flavour) (*nvram.Snapshot, error) {
	snap := &nvram.Snapshot{
		Flavour:  f,
		Legacy:   make(map[nvram.NVID][]byte, len(d.NVRAM.Legacy)),
		Extended: make(map[nvram.ExtKey][]byte, len(d.NVRAM.Extended)),
	}
	for key, value := range d.NVRAM.Legacy {
		id, err := parseHexID(key, 16)
		if err != nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("legacy item key %q: %v", key, err)}
		}
		raw, err := hex.DecodeString(value)
		if err != nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("legacy item %q: %v", key, err)}
		}
		snap.Legacy[nvram.NVID(id)] = raw
	}
	for key, value := range d.NVRAM.Extended {
		ek, err := parseExtKey(key)
		if err != nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("extended item key %q: %v", key, err)}
		}
		raw, err := hex.DecodeString(value)
		if err != nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("extended item %q: %v", key, err)}
		}
		snap.Extended[ek] = raw
	}
	return snap, nil
}

func parseHexID(s string, bits int) (uint64, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	return strconv.ParseUint(s, 16, bits)
}

func parseExtKey(s string) (nvram.ExtKey, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nvram.ExtKey{}, fmt.Errorf("want sysid:itemid:subid")
	}
	sys, err := parseHexID(parts[0], 8)
	if err != nil {
		return nvram.ExtKey{}, err
	}
	item, err := parseHexID(parts[1], 16)
	if err != nil {
		return nvram.ExtKey{}, err
	}
	sub, err := parseHexID(parts[2], 16)
	if err != nil {
		return nvram.ExtKey{}, err
	}
	return nvram.ExtKey{
		SysID:  nvram.NvSysID(sys),
		ItemID: nvram.ExNVID(item),
		SubID:  uint16(sub),
	}, nil
}

// IEEEString formats a 64-bit IEEE address the way the document stores
// it, most significant byte first with colon separators.
func IEEEString(addr uint64) string {
	var parts [8]string
	for i := 0; i < 8; i++ {
		parts[i] = fmt.Sprintf("%02x", byte(addr>>uint(56-8*i)))
	}
	return strings.Join(parts[:], ":")
}

// ParseIEEE reverses IEEEString.
func ParseIEEE(s string) (uint64, error) {
	clean := strings.ReplaceAll(s, ":", "")
	if len(clean) != 16 {
		return 0, fmt.Errorf("backup: IEEE address %q must be 8 bytes", s)
	}
	v, err := strconv.ParseUint(clean, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("backup: IEEE address %q: %w", s, err)
	}
	return v, nil
}

// KeyString hex-encodes a 128-bit key.
func KeyString(key []byte) string {
	return hex.EncodeToString(key)
}

// ParseKey reverses KeyString and checks the length.
func ParseKey(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("backup: key %q: %w", s, err)
	}
	if len(raw) != 16 {
		return nil, fmt.Errorf("backup: key %q must be 16 bytes", s)
	}
	return raw, nil
}
