package handlers

import (
	"encoding/json"
	"net/http"

	"luxelens/internal/domain"
)

type choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type optionsResponse struct {
	Current domain.RetouchOptions `json:"current"`
	Catalog map[string][]choice   `json:"catalog"`
}

func optionCatalog() map[string][]choice {
	metals := []domain.MetalColor{domain.MetalSilver, domain.MetalGold, domain.MetalRoseGold}
	stones := []domain.StoneColor{
		domain.StoneOriginal, domain.StoneDiamond, domain.StoneRuby,
		domain.StoneSapphire, domain.StoneEmerald, domain.StoneAmethyst,
	}
	backgrounds := []domain.Background{
		domain.BackgroundWhite, domain.BackgroundMarble,
		domain.BackgroundBlack, domain.BackgroundNatural,
	}
	intensities := []domain.Intensity{domain.IntensityNatural, domain.IntensityPro, domain.IntensityUltra}
	aspects := []domain.AspectRatio{
		domain.AspectSquare, domain.AspectPortrait, domain.AspectLandscape,
		domain.AspectStory, domain.AspectWide,
	}

	catalog := map[string][]choice{}
	for _, m := range metals {
		catalog["metal_color"] = append(catalog["metal_color"], choice{Value: string(m), Label: domain.MetalLabel(m)})
	}
	for _, s := range stones {
		catalog["stone_color"] = append(catalog["stone_color"], choice{Value: string(s), Label: domain.StoneLabel(s)})
	}
	for _, b := range backgrounds {
		catalog["background"] = append(catalog["background"], choice{Value: string(b), Label: domain.BackgroundLabel(b)})
	}
	for _, i := range intensities {
		catalog["intensity"] = append(catalog["intensity"], choice{Value: string(i), Label: domain.IntensityLabel(i)})
	}
	for _, a := range aspects {
		catalog["aspect_ratio"] = append(catalog["aspect_ratio"], choice{Value: string(a), Label: string(a)})
	}
	return catalog
}

// OptionsGet returns the active style configuration plus the selectable
// catalog with display labels.
func (a *App) OptionsGet(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, optionsResponse{
		Current: a.Engine.Options(),
		Catalog: optionCatalog(),
	})
}

// OptionsSet stores a new style configuration. Unknown values fall back to
// the defaults rather than failing the request.
func (a *App) OptionsSet(w http.ResponseWriter, r *http.Request) {
	var opts domain.RetouchOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.Engine.SetOptions(opts)
	a.json(w, http.StatusOK, optionsResponse{
		Current: a.Engine.Options(),
		Catalog: optionCatalog(),
	})
}
