package leads

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndStatusTransitions(t *testing.T) {
	r := NewRepository()
	l, err := r.Add(Lead{FirstName: " Alice ", LastName: "A", PhoneNumber: "+15550001"})
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, "Alice", l.FirstName)
	assert.Equal(t, StatusPending, l.Status)

	require.NoError(t, r.MarkCalled(l.ID, "call-1"))
	got, err := r.Get(l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCalled, got.Status)
	assert.Equal(t, "call-1", got.CallID)

	require.NoError(t, r.Remove(l.ID))
	assert.ErrorIs(t, r.Remove(l.ID), ErrNotFound)
	assert.ErrorIs(t, r.MarkFailed(l.ID), ErrNotFound)
}

func TestAdd_RequiresNameAndPhone(t *testing.T) {
	r := NewRepository()
	_, err := r.Add(Lead{FirstName: "Bob", PhoneNumber: "+1"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, r.List())
}

func TestSelect_PreservesOrder(t *testing.T) {
	r := NewRepository()
	a, _ := r.Add(Lead{FirstName: "A", LastName: "A", PhoneNumber: "1"})
	b, _ := r.Add(Lead{FirstName: "B", LastName: "B", PhoneNumber: "2"})

	got, err := r.Select([]string{b.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, []string{got[0].FirstName, got[1].FirstName})

	_, err = r.Select([]string{a.ID, "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportDelimitedText(t *testing.T) {
	r := NewRepository()
	text := "firstName,lastName,email,phoneNumber\n" +
		"John,Doe,john@example.com,+1234567890\n" +
		"Jane,,jane@example.com,+0987654321\n" +
		"Max,Power,,+111\n" +
		"NoPhone,Person,np@example.com\n"

	rep, err := r.ImportDelimitedText(text)
	require.NoError(t, err)
	require.Len(t, rep.Added, 2)
	assert.Equal(t, "John", rep.Added[0].FirstName)
	assert.Equal(t, "", rep.Added[1].Email)
	assert.Equal(t, []SkippedRow{
		{Line: 3, Reason: "missing name"},
		{Line: 5, Reason: "missing phone number"},
	}, rep.Skipped)
	assert.Len(t, r.List(), 2)
}

func TestImportDelimitedText_NoHeader(t *testing.T) {
	rep, err := ParseDelimitedText("Ann,Lee,ann@x.io,+1\nBo,Ko,,+2")
	require.NoError(t, err)
	assert.Len(t, rep.Added, 2)
}

func TestImport_ZeroValidDoesNotMutate(t *testing.T) {
	r := NewRepository()
	_, _ = r.Add(Lead{FirstName: "Keep", LastName: "Me", PhoneNumber: "1"})

	_, err := r.ImportDelimitedText("first,last\nonly,")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.ImportCSV(strings.NewReader("email,phone\nx@y.z,+1\n"))
	assert.ErrorIs(t, err, ErrValidation)

	assert.Len(t, r.List(), 1)
}

func TestImportCSV_FullNameColumn(t *testing.T) {
	r := NewRepository()
	rep, err := r.ImportCSV(strings.NewReader("name,phone\n\"John Smith\",\"+15551234567\"\n"))
	require.NoError(t, err)
	require.Len(t, rep.Added, 1)

	l := rep.Added[0]
	assert.Equal(t, "John", l.FirstName)
	assert.Equal(t, "Smith", l.LastName)
	assert.Equal(t, "+15551234567", l.PhoneNumber)
	assert.Equal(t, "", l.Email)
	assert.Equal(t, StatusPending, l.Status)
}

func TestImportCSV_FuzzyHeadersAndShortRows(t *testing.T) {
	src := "First Name,Last Name,Email Address,Mobile\n" +
		"Ann,Lee,ann@x.io,+1\n" +
		"short,row\n" +
		",Nobody,n@x.io,+2\n"
	rep, err := ParseTable(mustCSV(t, src))
	require.NoError(t, err)
	require.Len(t, rep.Added, 1)
	assert.Equal(t, "ann@x.io", rep.Added[0].Email)
	assert.Equal(t, []SkippedRow{
		{Line: 3, Reason: "fewer cells than header"},
		{Line: 4, Reason: "missing name"},
	}, rep.Skipped)
}

func TestExportCSV_Quoting(t *testing.T) {
	out, err := ExportCSV([]Lead{{FirstName: "Smith, Jr", LastName: `The "Boss"`, PhoneNumber: "+1", Status: StatusCalled}})
	require.NoError(t, err)
	assert.Equal(t, "firstName,lastName,email,phoneNumber,status\n\"Smith, Jr\",\"The \"\"Boss\"\"\",,+1,called\n", out)
}

func TestCSVRoundTrip(t *testing.T) {
	src := NewRepository()
	in := []Lead{
		{FirstName: "Alice", LastName: "Anders", Email: "a@x.io", PhoneNumber: "+15550001"},
		{FirstName: "Bob", LastName: "Van Dyke", Email: "", PhoneNumber: "+15550002"},
		{FirstName: "Cara, Jr", LastName: "Quote\"d", Email: "c@x.io", PhoneNumber: "+15550003"},
	}
	for _, l := range in {
		_, err := src.Add(l)
		require.NoError(t, err)
	}
	_ = src.MarkFailed(src.List()[1].ID)

	out, err := ExportCSV(src.List())
	require.NoError(t, err)

	dst := NewRepository()
	rep, err := dst.ImportCSV(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, rep.Added, len(in))
	for i, l := range rep.Added {
		assert.Equal(t, in[i].FirstName, l.FirstName)
		assert.Equal(t, in[i].LastName, l.LastName)
		assert.Equal(t, in[i].Email, l.Email)
		assert.Equal(t, in[i].PhoneNumber, l.PhoneNumber)
		assert.Equal(t, StatusPending, l.Status)
	}
}

func TestTemplateXLSXImports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportTemplateXLSX(&buf))

	r := NewRepository()
	rep, err := r.ImportXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, rep.Added, 1)
	assert.Equal(t, "John", rep.Added[0].FirstName)
	assert.Equal(t, "+1234567890", rep.Added[0].PhoneNumber)
}

func TestImportXLSX_Garbage(t *testing.T) {
	_, err := NewRepository().ImportXLSX(strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, ErrValidation)
}

func mustCSV(t *testing.T, s string) [][]string {
	t.Helper()
	rows, err := readCSV(strings.NewReader(s))
	require.NoError(t, err)
	return rows
}
