package yaiba_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/pseudonym"
)

var testSalt = []byte("0123456789abcdef0123456789abcdef")

// sessionText is a short session: seven recognized entries and three
// unrelated lines, separated by two blank lines as VRChat writes them.
var sessionText = strings.Join([]string{
	"2022.03.04 21:50:19 Log        -  [Behaviour] Entering Room: FirstRoom",
	"2022.03.04 21:50:22 Log        -  [Behaviour] OnPlayerJoined E.HOBA",
	`2022.03.04 21:50:22 Log        -  [Behaviour] Initialized PlayerAPI "E.HOBA" is remote`,
	"2022.03.04 21:50:23 Log        -  [Player Position Version]1.0.0",
	`2022.03.04 21:50:31 Log        -  [Player Position]13,"E.HOBA",-6.329126,-0.3207326,-0.3207326,272.0943,-0.009579957,-0.01711023,True`,
	`2022.03.04 21:50:41 Log        -  [Player Position]13,"E.HOBA",-6.336999,-0.3212091,-0.3212091,291.8254,-0.01143897,0.03140759,True`,
	"2022.03.04 21:50:25 Log        -  Measure Human Avatar Avatar",
	"2022.03.04 21:50:26 Warning    -  Some shader is not supported\nat a stack frame\n",
	"2022.03.05 03:13:50 Log        -  [Behaviour] OnPlayerLeft E.HOBA",
	"2022.03.05 03:14:19 Log        -  [Behaviour] Entering Room: SecondRoom",
}, "\n\n\n")

func newParser(t *testing.T, opts ...yaiba.Option) *yaiba.Parser {
	t.Helper()
	p, err := yaiba.NewParser(append([]yaiba.Option{yaiba.WithSalt(testSalt)}, opts...)...)
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	return p
}

func typeIDs(l *yaiba.SessionLog) []yaiba.TypeID {
	ids := make([]yaiba.TypeID, l.Len())
	for i, e := range l.Entries {
		ids[i] = e.TypeID()
	}
	return ids
}

func equalIDs(a, b []yaiba.TypeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseString_Session(t *testing.T) {
	l, err := newParser(t).ParseString(sessionText)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	want := []yaiba.TypeID{
		yaiba.TypeEnteringRoom,
		yaiba.TypePlayerJoin,
		yaiba.TypePlayerPositionVersion,
		yaiba.TypePlayerPosition,
		yaiba.TypePlayerPosition,
		yaiba.TypePlayerLeft,
		yaiba.TypeEnteringRoom,
	}
	if got := typeIDs(l); !equalIDs(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}

	if room := l.Entries[0].(*yaiba.EnteringRoom); room.RoomName != "FirstRoom" {
		t.Errorf("first room = %q", room.RoomName)
	}
	if room := l.Entries[6].(*yaiba.EnteringRoom); room.RoomName != "SecondRoom" {
		t.Errorf("second room = %q", room.RoomName)
	}

	pseudo := pseudonym.New(testSalt).Pseudonymize("E.HOBA")
	join := l.Entries[1].(*yaiba.PlayerJoin)
	if join.UserName != "E.HOBA" || join.PseudoUserName != pseudo {
		t.Errorf("join = %+v, want pseudonym %q", join, pseudo)
	}

	pos := l.Entries[3].(*yaiba.PlayerPosition)
	if pos.LocationY == nil || *pos.LocationY != -0.3207326 || pos.PseudoUserName != pseudo || !pos.IsVR {
		t.Errorf("position = %+v", pos)
	}
}

func TestParseString_FreshSchemaPerCall(t *testing.T) {
	p := newParser(t)
	if _, err := p.ParseString(sessionText); err != nil {
		t.Fatal(err)
	}

	legacy := `2022.03.04 21:57:53 Log        -  [Player Position]13,"E.HOBA",-1.622916,1.637101,230.3723,-3.32147,-2.619154,True`
	l, err := p.ParseString(legacy)
	if err != nil {
		t.Fatal(err)
	}
	if l.Len() != 1 {
		t.Fatalf("got %d entries, want 1", l.Len())
	}
	if pos := l.Entries[0].(*yaiba.PlayerPosition); pos.LocationY != nil {
		t.Error("a new parse must start in the legacy schema")
	}
}

func TestParseString_Empty(t *testing.T) {
	l, err := newParser(t).ParseString("")
	if err != nil {
		t.Fatal(err)
	}
	if l.Len() != 0 {
		t.Errorf("got %d entries, want 0", l.Len())
	}
}

const malformedPosition = `2022.03.04 21:57:53 Log        -  [Player Position]13,"E.HOBA",abc,1.637101,230.3723,-3.32147,-2.619154,True`

func TestParseString_MalformedIsError(t *testing.T) {
	input := "2022.03.04 21:50:19 Log        -  [Behaviour] Entering Room: FirstRoom\n\n\n" + malformedPosition

	l, err := newParser(t).ParseString(input)

	var parseErr *yaiba.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if string(parseErr.Raw) != malformedPosition {
		t.Errorf("Raw = %q", parseErr.Raw)
	}
	if !errors.Is(err, yaiba.ErrMalformedEntry) {
		t.Errorf("error = %v, want ErrMalformedEntry", err)
	}
	if l == nil || l.Len() != 1 {
		t.Errorf("entries before the error should be returned, got %v", l)
	}
}

func TestParseString_SkipMalformed(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	input := strings.Join([]string{
		"2022.03.04 21:50:19 Log        -  [Behaviour] Entering Room: FirstRoom",
		malformedPosition,
		"2022.03.05 03:13:50 Log        -  [Behaviour] OnPlayerLeft E.HOBA",
	}, "\n\n\n")

	l, err := newParser(t, yaiba.WithLogger(logger), yaiba.WithSkipMalformed(true)).ParseString(input)
	if err != nil {
		t.Fatal(err)
	}
	want := []yaiba.TypeID{yaiba.TypeEnteringRoom, yaiba.TypePlayerLeft}
	if got := typeIDs(l); !equalIDs(got, want) {
		t.Errorf("types = %v, want %v", got, want)
	}
	out := logs.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "skipping malformed entry") {
		t.Errorf("expected a warning, got %q", out)
	}
}

func TestParseString_NonFiniteIsError(t *testing.T) {
	for _, value := range []string{"NaN", "inf", "-Infinity"} {
		t.Run(value, func(t *testing.T) {
			input := `2022.03.04 21:57:53 Log        -  [Player Position]13,"E.HOBA",` + value + `,1.637101,230.3723,-3.32147,-2.619154,True`
			_, err := newParser(t).ParseString(input)
			if !errors.Is(err, yaiba.ErrMalformedEntry) {
				t.Errorf("error = %v, want ErrMalformedEntry", err)
			}
		})
	}
}

func TestParseError_TruncatesByRune(t *testing.T) {
	raw := "2022.03.04 21:50:19 Log        -  [Behaviour] Entering Room: " + strings.Repeat("理系集会", 30)
	err := &yaiba.ParseError{Raw: yaiba.Raw(raw), Err: yaiba.ErrMalformedEntry}

	msg := err.Error()
	if strings.Contains(msg, `\x`) {
		t.Errorf("Error() = %q splits a multi-byte character", msg)
	}
	if !strings.Contains(msg, `..."`) {
		t.Errorf("Error() = %q, want a truncated raw entry", msg)
	}
}

func TestParseString_NewerVersionWarns(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	input := "2022.03.04 21:50:23 Log        -  [Player Position Version]2.0.0\n\n\n" +
		`2022.03.04 21:57:53 Log        -  [Player Position]13,"E.HOBA",-1.622916,1.637101,1.937101,230.3723,-3.32147,-2.619154,-0.03742229,-0.007943284,0.0001138111,True`

	l, err := newParser(t, yaiba.WithLogger(logger)).ParseString(input)
	if err != nil {
		t.Fatal(err)
	}
	if l.Len() != 2 {
		t.Fatalf("got %d entries, want 2", l.Len())
	}
	if pos := l.Entries[1].(*yaiba.PlayerPosition); pos.VelocityZ == nil {
		t.Error("position should be parsed with the 1.0.0 layout")
	}
	if !strings.Contains(logs.String(), "level=WARN") {
		t.Errorf("expected a warning, got %q", logs.String())
	}
}

func TestParseString_Filters(t *testing.T) {
	tests := []struct {
		name string
		opts []yaiba.Option
		want []yaiba.TypeID
	}{
		{
			name: "include",
			opts: []yaiba.Option{yaiba.WithIncludeTypes(yaiba.TypePlayerJoin, yaiba.TypePlayerLeft)},
			want: []yaiba.TypeID{yaiba.TypePlayerJoin, yaiba.TypePlayerLeft},
		},
		{
			name: "exclude",
			opts: []yaiba.Option{yaiba.WithExcludeTypes(yaiba.TypePlayerPosition, yaiba.TypePlayerPositionVersion)},
			want: []yaiba.TypeID{yaiba.TypeEnteringRoom, yaiba.TypePlayerJoin, yaiba.TypePlayerLeft, yaiba.TypeEnteringRoom},
		},
		{
			name: "filter",
			opts: []yaiba.Option{yaiba.WithFilter(
				[]yaiba.TypeID{yaiba.TypeEnteringRoom, yaiba.TypePlayerJoin},
				[]yaiba.TypeID{yaiba.TypePlayerJoin},
			)},
			want: []yaiba.TypeID{yaiba.TypeEnteringRoom, yaiba.TypeEnteringRoom},
		},
		{
			name: "time range",
			opts: []yaiba.Option{yaiba.WithTimeRange(
				time.Date(2022, 3, 4, 21, 50, 22, 0, time.FixedZone("JST", 9*60*60)),
				time.Date(2022, 3, 4, 21, 50, 41, 0, time.FixedZone("JST", 9*60*60)),
			)},
			want: []yaiba.TypeID{yaiba.TypePlayerJoin, yaiba.TypePlayerPositionVersion, yaiba.TypePlayerPosition},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := newParser(t, tt.opts...).ParseString(sessionText)
			if err != nil {
				t.Fatal(err)
			}
			if got := typeIDs(l); !equalIDs(got, tt.want) {
				t.Errorf("types = %v, want %v", got, tt.want)
			}
		})
	}
}

type roomOnly struct{}

func (roomOnly) Parse(raw yaiba.Raw) (yaiba.Entry, error) {
	if !strings.Contains(string(raw), "Entering Room") {
		return nil, nil
	}
	return &yaiba.EnteringRoom{RoomName: "custom"}, nil
}

func TestWithParsers_ReplacesDefaults(t *testing.T) {
	l, err := newParser(t, yaiba.WithParsers(roomOnly{})).ParseString(sessionText)
	if err != nil {
		t.Fatal(err)
	}
	if l.Len() != 2 {
		t.Fatalf("got %d entries, want 2", l.Len())
	}
	for _, e := range l.Entries {
		if e.(*yaiba.EnteringRoom).RoomName != "custom" {
			t.Errorf("entry %v was not produced by the custom parser", e)
		}
	}
}

func TestWithTagNames(t *testing.T) {
	input := "2022.03.04 21:50:19 Log        -  [Yodo][Dump][0,7,6],[1,-1,1],"

	l, err := newParser(t, yaiba.WithTagNames("A", "B", "C")).ParseString(input)
	if err != nil {
		t.Fatal(err)
	}
	tags := l.Entries[0].(*yaiba.TagMarker).TagNamesForPlayerID
	if len(tags) != 1 || strings.Join(tags[7], ",") != "B,C" {
		t.Errorf("tags = %v, want map[7:[B C]]", tags)
	}
}

type upper struct{}

func (upper) Pseudonymize(name yaiba.UserName) yaiba.PseudoUserName {
	return yaiba.PseudoUserName(strings.ToUpper(string(name)))
}

func TestWithPseudonymizer(t *testing.T) {
	p := newParser(t, yaiba.WithPseudonymizer(upper{}))
	l, err := p.ParseString("2022.03.04 21:50:22 Log        -  [Behaviour] OnPlayerJoined e.hoba")
	if err != nil {
		t.Fatal(err)
	}
	if got := l.Entries[0].(*yaiba.PlayerJoin).PseudoUserName; got != "E.HOBA" {
		t.Errorf("PseudoUserName = %q, want E.HOBA", got)
	}
}

func TestNewParser_RandomSalt(t *testing.T) {
	a, err := yaiba.NewParser()
	if err != nil {
		t.Fatal(err)
	}
	b, err := yaiba.NewParser()
	if err != nil {
		t.Fatal(err)
	}
	if a.Pseudonymizer().Pseudonymize("E.HOBA") == b.Pseudonymizer().Pseudonymize("E.HOBA") {
		t.Error("parsers without a salt should not share pseudonyms")
	}
}

func TestNewParser_InvalidOptions(t *testing.T) {
	at := time.Date(2022, 3, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		opt  yaiba.Option
	}{
		{"negative empty reads", yaiba.WithMaxEmptyReads(-1)},
		{"inverted time range", yaiba.WithTimeRange(at, at.Add(-time.Hour))},
		{"empty time range", yaiba.WithTimeRange(at, at)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := yaiba.NewParser(tt.opt); err == nil {
				t.Error("NewParser() should fail")
			}
		})
	}
}

func TestEntries_Break(t *testing.T) {
	p := newParser(t)
	count := 0
	for _, err := range p.Entries(yaiba.NewLineReader(strings.NewReader(sessionText))) {
		if err != nil {
			t.Fatal(err)
		}
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

type failingReader struct {
	lines []string
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.lines) == 0 {
		return 0, errors.New("disk on fire")
	}
	n := copy(p, r.lines[0])
	r.lines = r.lines[1:]
	return n, nil
}

func TestParseReader_ReadError(t *testing.T) {
	r := &failingReader{lines: []string{
		"2022.03.04 21:50:19 Log        -  [Behaviour] Entering Room: FirstRoom\n",
		"2022.03.04 21:50:22 Log        -  [Behaviour] OnPlayerJoined E.HOBA\n",
	}}

	l, err := newParser(t).ParseReader(r)
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("error = %v, want the read error", err)
	}
	if l.Len() != 2 {
		t.Errorf("got %d entries before the error, want 2", l.Len())
	}
}

func TestParseFile(t *testing.T) {
	path := writeLog(t, t.TempDir(), "output_log_2022-03-04_21-50-00.txt", sessionText)

	l, err := newParser(t).ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if l.Len() != 7 {
		t.Errorf("got %d entries, want 7", l.Len())
	}
}

func TestParseFile_CRLF(t *testing.T) {
	path := writeLog(t, t.TempDir(), "output_log_crlf.txt", strings.ReplaceAll(sessionText, "\n", "\r\n"))

	l, err := newParser(t).ParseFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if l.Len() != 7 {
		t.Fatalf("got %d entries, want 7", l.Len())
	}
	if room := l.Entries[6].(*yaiba.EnteringRoom); room.RoomName != "SecondRoom" {
		t.Errorf("RoomName = %q, want SecondRoom", room.RoomName)
	}
}

func TestParseFile_EmptyPath(t *testing.T) {
	if _, err := newParser(t).ParseFile(context.Background(), ""); err == nil {
		t.Error("ParseFile with empty path should fail")
	}
}

func TestParseFile_FileNotFound(t *testing.T) {
	if _, err := newParser(t).ParseFile(context.Background(), "/nonexistent/output_log.txt"); err == nil {
		t.Error("ParseFile with nonexistent file should fail")
	}
}

func TestParseFile_ContextCanceled(t *testing.T) {
	var b strings.Builder
	for i := range 2000 {
		fmt.Fprintf(&b, "2022.03.04 21:50:19 Log        -  [Behaviour] OnPlayerJoined User%d\n\n\n", i)
	}
	path := writeLog(t, t.TempDir(), "output_log_big.txt", b.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newParser(t).ParseFile(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParseLatest(t *testing.T) {
	dir := t.TempDir()
	old := writeLog(t, dir, "output_log_old.txt", "2022.03.04 21:50:19 Log        -  [Behaviour] Entering Room: Old")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	writeLog(t, dir, "output_log_new.txt", "2022.03.04 21:50:19 Log        -  [Behaviour] Entering Room: New")

	l, err := newParser(t).ParseLatest(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if room := l.Entries[0].(*yaiba.EnteringRoom); room.RoomName != "New" {
		t.Errorf("RoomName = %q, want New", room.RoomName)
	}
}

func TestParseLatest_NoLogs(t *testing.T) {
	_, err := newParser(t).ParseLatest(context.Background(), t.TempDir())
	if !errors.Is(err, yaiba.ErrLogDirNotFound) {
		t.Errorf("error = %v, want ErrLogDirNotFound", err)
	}
}

func TestSaveLoad(t *testing.T) {
	l, err := newParser(t).ParseString(sessionText)
	if err != nil {
		t.Fatal(err)
	}

	var first bytes.Buffer
	if err := yaiba.Save(&first, l, yaiba.ExportAll()); err != nil {
		t.Fatal(err)
	}
	loaded, err := yaiba.Load(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !equalIDs(typeIDs(loaded), typeIDs(l)) {
		t.Fatalf("loaded types = %v, want %v", typeIDs(loaded), typeIDs(l))
	}

	var second bytes.Buffer
	if err := yaiba.Save(&second, loaded, yaiba.ExportAll()); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("saving a loaded log changed it:\n%s\n%s", first.String(), second.String())
	}
}

func TestSaveLoad_InvalidUTF8(t *testing.T) {
	input := "2022.03.04 21:50:19 Log        -  [Behaviour] Entering Room: Room\xff\n\n\n" +
		"2022.03.04 21:50:22 Log        -  [Behaviour] OnPlayerJoined E.HOBA\xe3\x81"

	l, err := newParser(t).ParseString(input)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := yaiba.Save(&buf, l, yaiba.ExportAll()); err != nil {
		t.Fatal(err)
	}
	loaded, err := yaiba.Load(&buf)
	if err != nil {
		t.Fatal(err)
	}

	room := l.Entries[0].(*yaiba.EnteringRoom).RoomName
	if loaded.Entries[0].(*yaiba.EnteringRoom).RoomName != room || room != "Room\uFFFD" {
		t.Errorf("room name changed across save/load: %q", room)
	}
	parsed, got := l.Entries[1].(*yaiba.PlayerJoin), loaded.Entries[1].(*yaiba.PlayerJoin)
	if got.UserName != parsed.UserName || got.PseudoUserName != parsed.PseudoUserName {
		t.Errorf("join changed across save/load: %+v, want %+v", got, parsed)
	}
}

func TestSave_PseudonymizedHidesNames(t *testing.T) {
	l, err := newParser(t).ParseString(sessionText)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := yaiba.Save(&buf, l, yaiba.Pseudonymized()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "E.HOBA") {
		t.Error("raw user names must not be saved with the Pseudonymized policy")
	}
	if l.Entries[1].(*yaiba.PlayerJoin).UserName != "E.HOBA" {
		t.Error("saving must not modify entries")
	}
}

func TestLoad_WithMetadataDecoder(t *testing.T) {
	input := `{"log_entries":[],"metadata":{"title":"session 1"}}`
	l, err := yaiba.Load(strings.NewReader(input), yaiba.WithMetadataDecoder(func(raw json.RawMessage) (any, error) {
		return strings.ToUpper(string(raw)), nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if l.Metadata != `{"TITLE":"SESSION 1"}` {
		t.Errorf("Metadata = %v", l.Metadata)
	}
}

func TestLoad_UnknownTypeID(t *testing.T) {
	_, err := yaiba.Load(strings.NewReader(`{"log_entries":[{"type_id":"vrc/unknown"}]}`))
	var decodeErr *yaiba.DecodeError
	if !errors.As(err, &decodeErr) || !errors.Is(err, yaiba.ErrUnknownTypeID) {
		t.Errorf("error = %v, want *DecodeError wrapping ErrUnknownTypeID", err)
	}
}
