package heuristics

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"medi-cal-assistant/internal/domain/entity"
)

var (
	labeledLines = []struct {
		field entity.FormField
		re    *regexp.Regexp
	}{
		{entity.FieldAddress, regexp.MustCompile(`(?i)^(?:address|address line 1|address1|addr1)\s*[:\-]\s*(.+)$`)},
		{entity.FieldCity, regexp.MustCompile(`(?i)^city\s*[:\-]\s*(.+)$`)},
		{entity.FieldZip, regexp.MustCompile(`(?i)^(?:zip|zip code|postal code)\s*[:\-]\s*(\d{3,10})$`)},
	}
	segmentSep = regexp.MustCompile(`,|;|\n`)
	zipInTail  = regexp.MustCompile(`(\d{5}(?:-\d{4})?|\d{3,10})`)
)

// AddressBlock maps address fields to the values found in a message.
type AddressBlock map[entity.FormField]string

// ParseAddressBlock reads labeled "Field: value" lines, or failing that a
// comma separated "street, city, state zip" address.
func ParseAddressBlock(text string) AddressBlock {
	block := AddressBlock{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, l := range labeledLines {
			if m := l.re.FindStringSubmatch(line); m != nil {
				block[l.field] = strings.TrimSpace(m[1])
			}
		}
	}
	if len(block) > 0 {
		return block
	}

	var parts []string
	for _, p := range segmentSep.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return block
	}
	m := zipInTail.FindStringSubmatch(parts[len(parts)-1])
	if m == nil {
		return block
	}
	block[entity.FieldZip] = m[1]
	block[entity.FieldCity] = parts[len(parts)-2]
	// With only two segments the first one is the city, not a street.
	if len(parts) >= 3 {
		block[entity.FieldAddress] = parts[0]
	}
	return block
}

// String renders the block as labeled lines that ParseAddressBlock reads
// back unchanged.
func (b AddressBlock) String() string {
	labels := map[entity.FormField]string{
		entity.FieldAddress: "Address",
		entity.FieldCity:    "City",
		entity.FieldZip:     "Zip",
	}
	var lines []string
	for _, f := range entity.AddressFields {
		if v, ok := b[f]; ok {
			lines = append(lines, labels[f]+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}

// MultiField fills several address fields given in one message.
type MultiField struct{}

func (MultiField) Match(ctx context.Context, in Input) Outcome {
	in = in.withProgress()
	block := ParseAddressBlock(in.Query)
	if len(block) < 2 || in.Device == nil {
		return Declined()
	}

	var filled []string
	for _, f := range entity.AddressFields {
		value, ok := block[f]
		if !ok {
			continue
		}
		done, err := fillField(ctx, in.Device, f, value)
		if err != nil {
			logDecline(in, "multi_field", err)
			break
		}
		if done {
			in.Progress.MarkFilled(f)
			filled = append(filled, string(f))
		}
	}
	if len(filled) == 0 {
		return Declined()
	}
	return Matched(fmt.Sprintf("Auto-filled fields: %s. %s", strings.Join(filled, ", "), NextPrompt(in.Progress)))
}
