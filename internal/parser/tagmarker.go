package parser

import (
	"fmt"
	"math/big"
	"regexp"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

// DefaultTagNames are the tag marker names used at Science Assembly, in
// the order configured in the world.
var DefaultTagNames = []string{
	"機械工学",
	"電気系工学",
	"物理工学",
	"物理学",
	"化学",
	"生物学",
	"天文学",
	"数学",
	"農学",
	"環境学",
	"薬学",
	"情報学",
	"医学",
	"土木工学",
	"地学",
	"製造学",
	"文系",
	"その他",
	"初めて来ました",
	"聞きたい",
	"話したい",
	"議論したい",
}

// noPlayer is the player id of unused tag marker slots.
const noPlayer = -1

var (
	tagDumpRegex = regexp.MustCompile(logPrefix + `\[Yodo\]\[Dump\](.+)`)
	tagSlotRegex = regexp.MustCompile(`\[(\d+),(-?\d+),([0-9A-Fa-f]+)\],`)
)

// TagMarker parses the dumps written by the Yodokoro tag marker gimmick:
// a repeated "[index,player_id,tags_hex]," triple where bit N of tags_hex
// selects tag N.
type TagMarker struct {
	tagNames []string
}

// NewTagMarker returns a TagMarker parser for the given ordered tag names.
// Nil tagNames uses DefaultTagNames.
func NewTagMarker(tagNames []string) *TagMarker {
	if tagNames == nil {
		tagNames = DefaultTagNames
	}
	names := make([]string, len(tagNames))
	copy(names, tagNames)
	return &TagMarker{tagNames: names}
}

// Parse implements EntryParser.
func (p *TagMarker) Parse(raw entry.Raw) (entry.Entry, error) {
	m := tagDumpRegex.FindStringSubmatch(string(raw))
	if m == nil {
		return nil, nil
	}
	ts, err := timestampFromMatch(m)
	if err != nil {
		return nil, err
	}
	tags, err := p.parseSlots(m[bodyGroup])
	if err != nil {
		return nil, err
	}
	return &entry.TagMarker{Timestamp: ts, TagNamesForPlayerID: tags}, nil
}

func (p *TagMarker) parseSlots(body string) (map[entry.PlayerID][]string, error) {
	tags := make(map[entry.PlayerID][]string)
	for _, slot := range tagSlotRegex.FindAllStringSubmatch(body, -1) {
		playerID, err := parseInt("player_id", slot[2])
		if err != nil {
			return nil, err
		}
		if playerID == noPlayer {
			continue
		}
		mask, ok := new(big.Int).SetString(slot[3], 16)
		if !ok {
			return nil, fmt.Errorf("%w: tags %q is not hexadecimal", ErrMalformedEntry, slot[3])
		}
		tags[entry.PlayerID(playerID)] = p.tagsFor(mask)
	}
	return tags, nil
}

// tagsFor returns the names whose bit is set in mask, in tag list order.
// Bits beyond the tag list are ignored.
func (p *TagMarker) tagsFor(mask *big.Int) []string {
	names := []string{}
	for i, name := range p.tagNames {
		if mask.Bit(i) == 1 {
			names = append(names, name)
		}
	}
	return names
}
