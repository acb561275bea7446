package heuristics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"medi-cal-assistant/internal/domain/entity"
	"medi-cal-assistant/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formDevice() *testutil.FakeDevice {
	dev := testutil.NewFakeDevice()
	dev.Targets["address_line_1"] = entity.Point{X: 1220, Y: 630}
	dev.Targets["city"] = entity.Point{X: 1220, Y: 900}
	dev.Targets["zip"] = entity.Point{X: 1220, Y: 1120}
	return dev
}

func newInput(dev *testutil.FakeDevice, asked, query string) Input {
	return Input{
		Query:    query,
		Asked:    asked,
		Device:   dev,
		Progress: entity.NewFormProgress(),
		Logger:   testutil.NopLogger{},
	}
}

func TestFullName_FillsNameInputsOnActivePage(t *testing.T) {
	dev := testutil.NewFakeDevice()
	dev.ActivePage = true
	dev.Fields["input[id*='first' i]"] = ""
	dev.Fields["input[name*='surname' i]"] = ""

	out := FullName{}.Match(context.Background(), newInput(dev, "Great. What is your first and last name?", "Maria de la Cruz"))

	require.True(t, out.OK())
	assert.Equal(t, "Auto-filled first name: Maria and last name: de la Cruz. What else can I help with?", out.Reply)
	assert.Equal(t, "Maria", dev.Fields["input[id*='first' i]"])
	assert.Equal(t, "de la Cruz", dev.Fields["input[name*='surname' i]"])
}

func TestFullName_WithoutPageStillAnswers(t *testing.T) {
	dev := testutil.NewFakeDevice()

	out := FullName{}.Match(context.Background(), newInput(dev, "Please tell me your given name.", "Ana Lopez"))

	require.True(t, out.OK())
	assert.Equal(t, "Received first and last name. First name: Ana; Last name: Lopez. What else can I help with?", out.Reply)
	assert.Empty(t, dev.Calls)
}

func TestFullName_FillFailureFallsBackToReceived(t *testing.T) {
	dev := testutil.NewFakeDevice()
	dev.ActivePage = true
	dev.FailWith["fill"] = errors.New("detached")

	out := FullName{}.Match(context.Background(), newInput(dev, "What's your first name?", "Ana Lopez"))

	require.True(t, out.OK())
	assert.True(t, strings.HasPrefix(out.Reply, "Received first and last name."))
}

func TestFullName_Declines(t *testing.T) {
	tests := []struct {
		name  string
		asked string
		query string
	}{
		{"single token", "What is your first name?", "Maria"},
		{"too long", "What is your first name?", "Maria " + strings.Repeat("x", 120)},
		{"not asked", "What's the city?", "San Francisco"},
		{"name without first", "Is this your name?", "Maria Lopez"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FullName{}.Match(context.Background(), newInput(testutil.NewFakeDevice(), tt.asked, tt.query))
			assert.False(t, out.OK())
		})
	}
}

func TestAskedField(t *testing.T) {
	tests := []struct {
		asked    string
		expected entity.FormField
		ok       bool
	}{
		{"What's the street address (Address Line 1)?", entity.FieldAddress, true},
		{"Please enter your address.", entity.FieldAddress, true},
		{"What's the city?", entity.FieldCity, true},
		{"What's the ZIP/postal code?", entity.FieldZip, true},
		{"Your postal code, please.", entity.FieldZip, true},
		{"Auto-filled zip: 94110. What's the street address (Address Line 1)?", entity.FieldAddress, true},
		{"Auto-filled address: 1 Main St. What's the city?", entity.FieldCity, true},
		{"Please enter your ZIP code. Thanks!", entity.FieldZip, true},
		{"Auto-filled zip: 94110. What else can I help with?", "", false},
		{"What else can I help with?", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.asked, func(t *testing.T) {
			f, ok := AskedField(tt.asked)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestSingleField_ZipAsksForAddress(t *testing.T) {
	dev := formDevice()
	in := newInput(dev, "Thanks! What's the ZIP/postal code?", "94110")

	out := SingleField{}.Match(context.Background(), in)

	require.True(t, out.OK())
	assert.Equal(t, "Auto-filled zip: 94110. What's the street address (Address Line 1)?", out.Reply)
	assert.Equal(t, []string{"triple_click (1220, 1120) offset=false", "type 94110"}, dev.Calls)
	assert.True(t, in.Progress.Filled(entity.FieldZip))
}

func TestSingleField_RequestBeforeClosingRemark(t *testing.T) {
	dev := formDevice()
	in := newInput(dev, "Please enter your ZIP code. Thanks!", "94110")

	out := SingleField{}.Match(context.Background(), in)

	require.True(t, out.OK())
	assert.Equal(t, []string{"triple_click (1220, 1120) offset=false", "type 94110"}, dev.Calls)
	assert.True(t, in.Progress.Filled(entity.FieldZip))
}

func TestSingleField_NextPromptFollowsProgress(t *testing.T) {
	dev := formDevice()
	in := newInput(dev, "What's the ZIP/postal code?", "94110")
	in.Progress.MarkFilled(entity.FieldAddress, entity.FieldCity)

	out := SingleField{}.Match(context.Background(), in)

	require.True(t, out.OK())
	assert.Equal(t, "Auto-filled zip: 94110. What else can I help with?", out.Reply)
}

func TestSingleField_Validation(t *testing.T) {
	tests := []struct {
		name  string
		asked string
		query string
		ok    bool
	}{
		{"address with number", "What's the street address?", "1600 Amphitheatre Pkwy", true},
		{"address with street word", "What's the street address?", "Main Street", true},
		{"address abbreviation", "What's the street address?", "Elm Dr", true},
		{"address without markers", "What's the street address?", "Drake", false},
		{"zip too short", "What's the ZIP/postal code?", "94", false},
		{"city question back", "What's the city?", "Which city?", false},
		{"city", "What's the city?", "Fresno", true},
		{"empty", "What's the city?", "   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SingleField{}.Match(context.Background(), newInput(formDevice(), tt.asked, tt.query))
			assert.Equal(t, tt.ok, out.OK())
		})
	}
}

func TestSingleField_DeclinesOnUnknownTargetOrDeviceFailure(t *testing.T) {
	dev := formDevice()
	delete(dev.Targets, "city")
	out := SingleField{}.Match(context.Background(), newInput(dev, "What's the city?", "Fresno"))
	assert.False(t, out.OK())

	dev = formDevice()
	dev.FailWith["type"] = errors.New("no focus")
	in := newInput(dev, "What's the city?", "Fresno")
	out = SingleField{}.Match(context.Background(), in)
	assert.False(t, out.OK())
	assert.False(t, in.Progress.Filled(entity.FieldCity))
}

func TestParseAddressBlock_Idempotent(t *testing.T) {
	first := ParseAddressBlock("123 Main St, San Francisco, CA 94110")
	assert.Equal(t, AddressBlock{
		entity.FieldAddress: "123 Main St",
		entity.FieldCity:    "San Francisco",
		entity.FieldZip:     "94110",
	}, first)

	labeled := first.String()
	assert.Equal(t, "Address: 123 Main St\nCity: San Francisco\nZip: 94110", labeled)
	assert.Equal(t, first, ParseAddressBlock(labeled))
}

func TestParseAddressBlock(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected AddressBlock
	}{
		{
			"labeled with dashes",
			"address line 1 - 9 Oak Ave\nPostal code: 95814",
			AddressBlock{entity.FieldAddress: "9 Oak Ave", entity.FieldZip: "95814"},
		},
		{
			"two segments",
			"Sacramento; 95814-1234",
			AddressBlock{entity.FieldCity: "Sacramento", entity.FieldZip: "95814-1234"},
		},
		{"no zip", "123 Main St, San Francisco", AddressBlock{}},
		{"plain text", "I need help", AddressBlock{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseAddressBlock(tt.text))
		})
	}
}

func TestMultiField_FillsInOrder(t *testing.T) {
	dev := formDevice()
	in := newInput(dev, "What's your address?", "123 Main St, San Francisco, CA 94110")

	out := MultiField{}.Match(context.Background(), in)

	require.True(t, out.OK())
	assert.Equal(t, "Auto-filled fields: address, city, zip. What else can I help with?", out.Reply)
	assert.Equal(t, []string{
		"triple_click (1220, 630) offset=false", "type 123 Main St",
		"triple_click (1220, 900) offset=false", "type San Francisco",
		"triple_click (1220, 1120) offset=false", "type 94110",
	}, dev.Calls)
}

func TestMultiField_PartialFillAsksNext(t *testing.T) {
	dev := formDevice()
	delete(dev.Targets, "address_line_1")
	delete(dev.Targets, "zip")

	out := MultiField{}.Match(context.Background(), newInput(dev, "", "City: Fresno\nZip: 93701"))

	require.True(t, out.OK())
	assert.Equal(t, "Auto-filled fields: city. What's the street address (Address Line 1)?", out.Reply)
}

func TestMultiField_Declines(t *testing.T) {
	out := MultiField{}.Match(context.Background(), newInput(formDevice(), "", "Zip: 93701"))
	assert.False(t, out.OK(), "one field is not enough")

	dev := testutil.NewFakeDevice()
	out = MultiField{}.Match(context.Background(), newInput(dev, "", "City: Fresno\nZip: 93701"))
	assert.False(t, out.OK(), "no targets, nothing filled")
}

func TestChain_FirstMatchWins(t *testing.T) {
	chain := Default()
	dev := formDevice()

	out := chain.Match(context.Background(), Input{
		Query:  "94110",
		Asked:  "What's the ZIP/postal code?",
		Device: dev,
	})
	require.True(t, out.OK())
	assert.Equal(t, "Auto-filled zip: 94110. What's the street address (Address Line 1)?", out.Reply)

	out = chain.Match(context.Background(), Input{Query: "How do I apply?", Asked: "Hi! How can I help?", Device: dev})
	assert.False(t, out.OK())
}
