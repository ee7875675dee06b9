package effects

import (
	"fmt"
	"sort"

	"github.com/fogleman/ease"
	"github.com/ivlev/dreams-promo/internal/scene"
)

var rates = map[string]scene.RateFunc{
	"linear":           ease.Linear,
	"smooth":           ease.InOutCubic,
	"ease_in_out_quad": ease.InOutQuad,
	"ease_in_out_sine": ease.InOutSine,
	"ease_in_cubic":    ease.InCubic,
	"ease_out_cubic":   ease.OutCubic,
}

// Rate looks up an easing function by name.
func Rate(name string) (scene.RateFunc, error) {
	r, ok := rates[name]
	if !ok {
		return nil, fmt.Errorf("unknown rate func %q (known: %v)", name, RateNames())
	}
	return r, nil
}

// RateNames lists the registered easing functions.
func RateNames() []string {
	names := make([]string, 0, len(rates))
	for n := range rates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Smooth is the play option used for almost every step of the promo.
func Smooth() scene.PlayOptions {
	return scene.PlayOptions{Rate: rates["smooth"], RateName: "smooth"}
}
