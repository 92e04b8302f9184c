package mailinglist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ets-berkeley-edu/ripley/internal/berkeley"
)

func TestNameForSite(t *testing.T) {
	spring2015 := &berkeley.Term{Year: 2015, Season: berkeley.SeasonSpring}
	tests := []struct {
		siteName string
		term     *berkeley.Term
		expected string
	}{
		{"CHEM 1A LEC 003", spring2015, "chem-1a-lec-003-sp15"},
		{`The "Wild"-"Wild" West?`, spring2015, "the-wild-wild-west-sp15"},
		{"Conversation intermédiaire", spring2015, "conversation-intermediaire-sp15"},
		{"  Surrounded   by   spaces  ", spring2015, "surrounded-by-spaces-sp15"},
		{"CHEM 1A LEC 003", nil, "chem-1a-lec-003-list"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NameForSite(tt.siteName, tt.term), "site name %q", tt.siteName)
	}
}

func TestNameForSiteTruncatesLongNames(t *testing.T) {
	name := NameForSite("Global Health: Disaster Preparedness and Response", &berkeley.Term{
		Year:   2015,
		Season: berkeley.SeasonSpring,
	})
	assert.Equal(t, "global-health-disaster-preparedness-and-respo-sp15", name)
}

func TestNameForSiteFallTerm(t *testing.T) {
	name := NameForSite("DATA 8", &berkeley.Term{Year: 2022, Season: berkeley.SeasonFall})
	assert.Equal(t, "data-8-fa22", name)
}
