package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/recipebox/recipebox/internal/model"
)

func TestRefNames(t *testing.T) {
	refs := []NamedRef{{Name: "Vegan"}, {Name: "Dessert"}}
	got := RefNames(refs)
	if len(got) != 2 || got[0] != "Vegan" || got[1] != "Dessert" {
		t.Errorf("RefNames() = %v", got)
	}

	if got := RefNames(nil); len(got) != 0 {
		t.Errorf("RefNames(nil) = %v, want empty", got)
	}
}

func TestToRecipeDetailResponseImage(t *testing.T) {
	recipe := &model.Recipe{
		ID:          1,
		Title:       "Pancakes",
		TimeMinutes: 15,
		Price:       "4.50",
	}

	resp := ToRecipeDetailResponse(recipe, "")
	if resp.Image != nil {
		t.Errorf("Image = %v, want nil without upload", *resp.Image)
	}

	resp = ToRecipeDetailResponse(recipe, "/media/recipe/abc.jpg")
	if resp.Image == nil || *resp.Image != "/media/recipe/abc.jpg" {
		t.Errorf("Image = %v, want /media/recipe/abc.jpg", resp.Image)
	}
}

func TestRecipeDetailImageEncodesNull(t *testing.T) {
	recipe := &model.Recipe{ID: 1, Title: "Pancakes", Price: "4.50"}

	raw, err := json.Marshal(ToRecipeDetailResponse(recipe, ""))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"image":null`) {
		t.Errorf("payload = %s, want image:null", raw)
	}
}

func TestDetailEmptyAssociationsEncodeAsArrays(t *testing.T) {
	recipe := &model.Recipe{ID: 1, Title: "Toast", Price: "1.00"}

	raw, err := json.Marshal(ToRecipeDetailResponse(recipe, ""))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"tags":[]`) {
		t.Errorf("payload = %s, want tags:[]", raw)
	}
	if !strings.Contains(string(raw), `"ingredients":[]`) {
		t.Errorf("payload = %s, want ingredients:[]", raw)
	}
}

func TestBaseRepresentationFields(t *testing.T) {
	recipe := &model.Recipe{
		ID:          1,
		Title:       "Sample",
		TimeMinutes: 10,
		Price:       "5.50",
		Description: "A longer write-up",
	}

	raw, err := json.Marshal(ToRecipeListResponse([]*model.Recipe{recipe}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	payload := string(raw)

	if !strings.Contains(payload, `"description":"A longer write-up"`) {
		t.Errorf("payload = %s, want description in base representation", payload)
	}
	// Associations belong to the detail representation only. Listing them
	// here would advertise counts the list query never loads.
	if strings.Contains(payload, `"tags"`) || strings.Contains(payload, `"ingredients"`) {
		t.Errorf("payload = %s, associations must not appear on the list path", payload)
	}
}

func TestToRecipeListResponse(t *testing.T) {
	recipes := []*model.Recipe{
		{ID: 2, Title: "Soup", Price: "3.00", Description: "Hot"},
		{ID: 1, Title: "Stew", Price: "8.25"},
	}

	resp := ToRecipeListResponse(recipes)
	if len(resp.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(resp.Data))
	}
	if resp.Data[0].ID != 2 || resp.Data[0].Description != "Hot" {
		t.Errorf("unexpected first item: %+v", resp.Data[0])
	}
}
