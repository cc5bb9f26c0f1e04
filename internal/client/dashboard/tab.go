package dashboard

import (
	"fmt"
	"strings"
)

type Tab int

const (
	TabAll Tab = iota
	TabFavorites
	TabCloud
)

func (t Tab) String() string {
	switch t {
	case TabAll:
		return "all"
	case TabFavorites:
		return "favorites"
	case TabCloud:
		return "cloud"
	}
	return "unknown"
}

func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return TabAll, nil
	case "favorites", "fav":
		return TabFavorites, nil
	case "cloud":
		return TabCloud, nil
	}
	return TabAll, fmt.Errorf("unknown tab %q", s)
}
