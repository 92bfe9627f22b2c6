// Package interpret holds the read-only interpretation texts attached to
// houses and signs. Tables are built once at init and never mutated.
package interpret

import (
	"fmt"
	"strings"

	"celestial/internal/domain/models"
)

type HouseMeaning struct {
	House       int    `json:"house"`
	Name        string `json:"name"`
	Theme       string `json:"theme"`
	Description string `json:"description"`
}

type SunText struct {
	Sign        models.ZodiacSign `json:"sign"`
	Title       string            `json:"title"`
	Strengths   []string          `json:"strengths"`
	Challenges  []string          `json:"challenges"`
	LifePurpose string            `json:"life_purpose"`
}

type MoonText struct {
	Sign            models.ZodiacSign `json:"sign"`
	EmotionalNature string            `json:"emotional_nature"`
	Needs           string            `json:"needs"`
	NurturingStyle  string            `json:"nurturing_style"`
}

var houses = [12]HouseMeaning{
	{1, "First House", "Self, Identity, Appearance", "Self-image, the body and the way you meet the world."},
	{2, "Second House", "Values, Possessions, Money", "Personal resources, income and self-worth."},
	{3, "Third House", "Communication, Siblings, Short Journeys", "Learning, siblings, neighbours and everyday exchange."},
	{4, "Fourth House", "Home, Family, Roots", "Home, ancestry and emotional foundations."},
	{5, "Fifth House", "Creativity, Romance, Children", "Play, self-expression, romance and children."},
	{6, "Sixth House", "Health, Work, Service", "Daily routines, health, work and service."},
	{7, "Seventh House", "Partnerships, Marriage, Contracts", "Committed one-on-one relationships and agreements."},
	{8, "Eighth House", "Transformation, Shared Resources, Intimacy", "Shared money, intimacy and deep change."},
	{9, "Ninth House", "Philosophy, Travel, Higher Learning", "Beliefs, higher education and long journeys."},
	{10, "Tenth House", "Career, Public Image, Achievement", "Vocation, reputation and public standing."},
	{11, "Eleventh House", "Friends, Groups, Hopes", "Friendship, communities and long-range hopes."},
	{12, "Twelfth House", "Subconscious, Spirituality, Hidden Matters", "Solitude, the unconscious and what stays unseen."},
}

var sunTexts = [12]SunText{
	{models.Aries, "The Trailblazer",
		[]string{"Natural leadership", "Courage", "Initiative"},
		[]string{"Impatience", "Impulsiveness"},
		"Breaking new ground and leading by example."},
	{models.Taurus, "The Builder",
		[]string{"Patience", "Practical skill", "Loyalty"},
		[]string{"Resistance to change", "Stubbornness"},
		"Building lasting security and beauty."},
	{models.Gemini, "The Communicator",
		[]string{"Quick intelligence", "Adaptability", "Wit"},
		[]string{"Scattered energy", "Restlessness"},
		"Gathering and sharing information, connecting people and ideas."},
	{models.Cancer, "The Nurturer",
		[]string{"Emotional intelligence", "Intuition", "Protectiveness"},
		[]string{"Moodiness", "Clinging to the past"},
		"Creating emotional security while honouring the past."},
	{models.Leo, "The Radiant One",
		[]string{"Charisma", "Generosity", "Creative confidence"},
		[]string{"Need for recognition", "Pride"},
		"Expressing creative gifts and inspiring others with warmth."},
	{models.Virgo, "The Analyst",
		[]string{"Analytical mind", "Craftsmanship", "Helpfulness"},
		[]string{"Self-criticism", "Perfectionism"},
		"Refining and improving so that things work better."},
	{models.Libra, "The Harmonizer",
		[]string{"Diplomacy", "Aesthetic sense", "Fairness"},
		[]string{"Indecision", "Conflict avoidance"},
		"Creating harmony and justice between opposing forces."},
	{models.Scorpio, "The Transformer",
		[]string{"Psychological insight", "Emotional depth", "Determination"},
		[]string{"Jealousy", "Difficulty letting go"},
		"Diving deep and emerging renewed, for yourself and others."},
	{models.Sagittarius, "The Seeker",
		[]string{"Wisdom", "Adventurous spirit", "Optimism"},
		[]string{"Overpromising", "Restlessness"},
		"Seeking and sharing truth and widening horizons."},
	{models.Capricorn, "The Achiever",
		[]string{"Discipline", "Strategic thinking", "Reliability"},
		[]string{"Rigidity", "Overwork"},
		"Building a legacy that outlasts you."},
	{models.Aquarius, "The Visionary",
		[]string{"Original thinking", "Humanitarian vision", "Independence"},
		[]string{"Emotional detachment", "Rebelliousness"},
		"Working toward a better future for everyone."},
	{models.Pisces, "The Mystic",
		[]string{"Compassion", "Imagination", "Intuition"},
		[]string{"Escapism", "Porous boundaries"},
		"Bringing compassion and creativity into the world."},
}

var moonTexts = buildMoonTexts()

func buildMoonTexts() [12]MoonText {
	var out [12]MoonText
	for i, s := range models.Signs() {
		out[i] = MoonText{
			Sign:            s,
			EmotionalNature: fmt.Sprintf("Your Moon in %s shapes how you feel and react.", s),
			Needs:           fmt.Sprintf("With the Moon in %s you need experiences that feed %s energy.", s, strings.ToLower(string(s.Element()))),
			NurturingStyle:  fmt.Sprintf("You care for others through %s's qualities.", s),
		}
	}
	return out
}

// House returns the meaning of house n (1..12).
func House(n int) (HouseMeaning, bool) {
	if n < 1 || n > 12 {
		return HouseMeaning{}, false
	}
	return houses[n-1], true
}

func Sun(sign models.ZodiacSign) (SunText, bool) {
	if !sign.Valid() {
		return SunText{}, false
	}
	return sunTexts[sign], true
}

func Moon(sign models.ZodiacSign) (MoonText, bool) {
	if !sign.Valid() {
		return MoonText{}, false
	}
	return moonTexts[sign], true
}
