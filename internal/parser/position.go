package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

// PositionSchema identifies the layout of player position entries.
type PositionSchema int

const (
	// SchemaLegacy has no vertical location and no velocity.
	SchemaLegacy PositionSchema = iota
	// SchemaV1 adds location_y and, when logged, the velocity triple.
	SchemaV1
)

func (s PositionSchema) String() string {
	if s == SchemaV1 {
		return "v1.0.0"
	}
	return "legacy"
}

// LatestPositionVersion is the newest schema version this parser knows.
var LatestPositionVersion = entry.SchemaVersion{Major: 1, Minor: 0, Patch: 0}

var (
	positionVersionRegex = regexp.MustCompile(logPrefix +
		`\[Player Position Version\]\s*(?P<major>\d+).(?P<minor>\d+).(?P<patch>\d+)`)

	positionLegacyRegex = regexp.MustCompile(logPrefix +
		`\[Player Position\](?P<player_id>\d+),"(?P<user_name>.+)",` +
		`(?P<location_x>[^,]*),(?P<location_z>[^,]*),` +
		`(?P<rotation_1>[^,]*),(?P<rotation_2>[^,]*),(?P<rotation_3>[^,]*),` +
		`(?P<is_vr>[^,]*)`)

	// positionV1Regex is tried before positionV1NoVelocityRegex, which
	// would also match the leading fields of a line with velocity.
	positionV1Regex = regexp.MustCompile(logPrefix +
		`\[Player Position\](?P<player_id>\d+),"(?P<user_name>.+)",` +
		`(?P<location_x>[^,]*),(?P<location_y>[^,]*),(?P<location_z>[^,]*),` +
		`(?P<rotation_1>[^,]*),(?P<rotation_2>[^,]*),(?P<rotation_3>[^,]*),` +
		`(?P<velocity_x>[^,]*),(?P<velocity_y>[^,]*),(?P<velocity_z>[^,]*),` +
		`(?P<is_vr>[^,]*)`)

	positionV1NoVelocityRegex = regexp.MustCompile(logPrefix +
		`\[Player Position\](?P<player_id>\d+),"(?P<user_name>.+)",` +
		`(?P<location_x>[^,]*),(?P<location_y>[^,]*),(?P<location_z>[^,]*),` +
		`(?P<rotation_1>[^,]*),(?P<rotation_2>[^,]*),(?P<rotation_3>[^,]*),` +
		`(?P<is_vr>[^,]*)`)
)

var (
	legacyRegexes = []*regexp.Regexp{positionLegacyRegex}
	v1Regexes     = []*regexp.Regexp{positionV1Regex, positionV1NoVelocityRegex}
)

// PlayerPosition parses player position entries and the version entries
// announcing their layout.
//
// The active schema starts as SchemaLegacy and switches to SchemaV1 once a
// version entry is seen. Because of this state a PlayerPosition must not be
// shared between concurrent callers, nor between independent logs.
type PlayerPosition struct {
	pseudonymizer Pseudonymizer
	logger        *slog.Logger
	schema        PositionSchema
}

// NewPlayerPosition returns a parser in the legacy schema.
// A nil logger disables logging.
func NewPlayerPosition(p Pseudonymizer, logger *slog.Logger) *PlayerPosition {
	return &PlayerPosition{
		pseudonymizer: p,
		logger:        orDiscard(logger),
		schema:        SchemaLegacy,
	}
}

// Schema returns the active schema.
func (p *PlayerPosition) Schema() PositionSchema {
	return p.schema
}

// Parse implements EntryParser.
func (p *PlayerPosition) Parse(raw entry.Raw) (entry.Entry, error) {
	// Position entries are far more frequent than version entries.
	pos, err := p.parsePosition(string(raw))
	if err != nil {
		return nil, err
	}
	if pos != nil {
		return pos, nil
	}

	version, err := p.parseVersion(string(raw))
	if version == nil || err != nil {
		return nil, err
	}

	p.schema = SchemaV1
	if version.Version().Compare(LatestPositionVersion) > 0 {
		p.logger.Warn("unexpected player position version, falling back to latest",
			"version", version.Version().String(),
			"fallback", LatestPositionVersion.String())
	}
	return version, nil
}

func (p *PlayerPosition) parseVersion(s string) (*entry.PlayerPositionVersion, error) {
	m := positionVersionRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, nil
	}
	ts, err := timestampFromMatch(m)
	if err != nil {
		return nil, err
	}

	g := groups{re: positionVersionRegex, m: m}
	v := &entry.PlayerPositionVersion{Timestamp: ts}
	if v.Major, err = parseInt("major", g.get("major")); err != nil {
		return nil, err
	}
	if v.Minor, err = parseInt("minor", g.get("minor")); err != nil {
		return nil, err
	}
	if v.Patch, err = parseInt("patch", g.get("patch")); err != nil {
		return nil, err
	}
	return v, nil
}

// match returns the groups of the first layout of the active schema
// matching s.
func (p *PlayerPosition) match(s string) (groups, bool) {
	regexes := legacyRegexes
	if p.schema == SchemaV1 {
		regexes = v1Regexes
	}
	for _, re := range regexes {
		if m := re.FindStringSubmatch(s); m != nil {
			return groups{re: re, m: m}, true
		}
	}
	return groups{}, false
}

func (p *PlayerPosition) parsePosition(s string) (*entry.PlayerPosition, error) {
	g, ok := p.match(s)
	if !ok {
		return nil, nil
	}
	ts, err := timestampFromMatch(g.m)
	if err != nil {
		return nil, err
	}

	playerID, err := parseInt("player_id", g.get("player_id"))
	if err != nil {
		return nil, err
	}

	// Names are written with CSV escaping.
	name := entry.UserName(strings.ReplaceAll(g.get("user_name"), `""`, `"`))

	pos := &entry.PlayerPosition{
		Timestamp:      ts,
		PlayerID:       entry.PlayerID(playerID),
		UserName:       name,
		PseudoUserName: p.pseudonymizer.Pseudonymize(name),
		IsVR:           strings.EqualFold(strings.TrimSpace(g.get("is_vr")), "true"),
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"location_x", &pos.LocationX},
		{"location_z", &pos.LocationZ},
		{"rotation_1", &pos.Rotation1},
		{"rotation_2", &pos.Rotation2},
		{"rotation_3", &pos.Rotation3},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloat(f.name, g.get(f.name)); err != nil {
			return nil, err
		}
	}

	// Fields absent from the matched layout stay nil.
	optional := []struct {
		name string
		dst  **float64
	}{
		{"location_y", &pos.LocationY},
		{"velocity_x", &pos.VelocityX},
		{"velocity_y", &pos.VelocityY},
		{"velocity_z", &pos.VelocityZ},
	}
	for _, f := range optional {
		if !g.has(f.name) {
			continue
		}
		v, err := parseFloat(f.name, g.get(f.name))
		if err != nil {
			return nil, err
		}
		*f.dst = &v
	}

	return pos, nil
}

// groups looks up named submatches.
type groups struct {
	re *regexp.Regexp
	m  []string
}

func (g groups) has(name string) bool {
	return g.re.SubexpIndex(name) >= 0
}

func (g groups) get(name string) string {
	if i := g.re.SubexpIndex(name); i >= 0 {
		return g.m[i]
	}
	return ""
}
