/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package musicdb

import "github.com/friendsincode/smartalarm/internal/models"

// ArtistProfile describes how strongly a curated artist fits each mood.
type ArtistProfile struct {
	Name         string                  `yaml:"name" json:"name"`
	Aliases      []string                `yaml:"aliases" json:"aliases"`
	Language     models.Language         `yaml:"language" json:"language"`
	Popularity   float64                 `yaml:"popularity" json:"popularity"`
	ActiveFrom   int                     `yaml:"active_from" json:"active_from"`
	Genres       []string                `yaml:"genres" json:"genres"`
	MoodStrength map[models.Mood]float64 `yaml:"mood_strength" json:"mood_strength"`
}

type strengths = map[models.Mood]float64

func tamilArtists() []ArtistProfile {
	return []ArtistProfile{
		{
			Name:       "Anirudh Ravichander",
			Aliases:    []string{"anirudh", "anirudh ravichander", "ani"},
			Popularity: 100,
			ActiveFrom: 2011,
			Genres:     []string{"kollywood", "hip-hop", "electronic", "kuthu"},
			MoodStrength: strengths{
				models.MoodDance: 100, models.MoodEnergetic: 95, models.MoodMotivational: 85,
				models.MoodNeutral: 70, models.MoodLove: 60, models.MoodCalm: 30,
			},
		},
		{
			Name:       "Harris Jayaraj",
			Aliases:    []string{"harris", "harris jayaraj", "hj"},
			Popularity: 95,
			ActiveFrom: 1997,
			Genres:     []string{"kollywood", "melody", "dance", "pop"},
			MoodStrength: strengths{
				models.MoodDance: 90, models.MoodLove: 95, models.MoodEnergetic: 80,
				models.MoodNeutral: 85, models.MoodMotivational: 70, models.MoodCalm: 75,
			},
		},
		{
			Name:       "A.R. Rahman",
			Aliases:    []string{"a.r. rahman", "rahman", "ar rahman", "a r rahman"},
			Popularity: 100,
			ActiveFrom: 1992,
			Genres:     []string{"kollywood", "classical", "fusion", "world"},
			MoodStrength: strengths{
				models.MoodLove: 100, models.MoodCalm: 100, models.MoodMotivational: 95,
				models.MoodNeutral: 90, models.MoodEnergetic: 80, models.MoodDance: 85,
			},
		},
		{
			Name:       "Yuvan Shankar Raja",
			Aliases:    []string{"yuvan", "yuvan shankar raja", "ysr"},
			Popularity: 90,
			ActiveFrom: 1996,
			Genres:     []string{"kollywood", "rock", "hip-hop", "alternative"},
			MoodStrength: strengths{
				models.MoodEnergetic: 95, models.MoodDance: 85, models.MoodMotivational: 90,
				models.MoodNeutral: 75, models.MoodLove: 70, models.MoodCalm: 60,
			},
		},
		{
			Name:       "Ilaiyaraaja",
			Aliases:    []string{"ilaiyaraaja", "ilaiyaraja", "maestro", "isai gnani"},
			Popularity: 100,
			ActiveFrom: 1976,
			Genres:     []string{"kollywood", "classical", "folk", "orchestral"},
			MoodStrength: strengths{
				models.MoodCalm: 100, models.MoodLove: 100, models.MoodNeutral: 95,
				models.MoodMotivational: 85, models.MoodEnergetic: 70, models.MoodDance: 75,
			},
		},
		{
			Name:       "G.V. Prakash Kumar",
			Aliases:    []string{"gv prakash", "gv", "g.v. prakash"},
			Popularity: 85,
			ActiveFrom: 2006,
			Genres:     []string{"kollywood", "hip-hop", "contemporary", "fusion"},
			MoodStrength: strengths{
				models.MoodDance: 85, models.MoodEnergetic: 80, models.MoodLove: 75,
				models.MoodMotivational: 70, models.MoodNeutral: 70, models.MoodCalm: 60,
			},
		},
		{
			Name:       "D. Imman",
			Aliases:    []string{"imman", "d. imman", "d imman"},
			Popularity: 80,
			ActiveFrom: 2002,
			Genres:     []string{"kollywood", "folk", "devotional", "traditional"},
			MoodStrength: strengths{
				models.MoodCalm: 85, models.MoodLove: 80, models.MoodNeutral: 85,
				models.MoodMotivational: 75, models.MoodEnergetic: 65, models.MoodDance: 70,
			},
		},
		{
			Name:       "Hiphop Tamizha",
			Aliases:    []string{"hiphop tamizha", "hht", "adhi"},
			Popularity: 90,
			ActiveFrom: 2012,
			Genres:     []string{"tamil rap", "hip-hop", "motivational", "patriotic"},
			MoodStrength: strengths{
				models.MoodMotivational: 100, models.MoodEnergetic: 95, models.MoodDance: 90,
				models.MoodNeutral: 70, models.MoodLove: 50, models.MoodCalm: 40,
			},
		},
		{
			Name:       "Santhosh Narayanan",
			Aliases:    []string{"santhosh narayanan", "santhosh", "santhosh deva"},
			Popularity: 85,
			ActiveFrom: 2011,
			Genres:     []string{"kollywood", "folk", "experimental", "indie"},
			MoodStrength: strengths{
				models.MoodNeutral: 90, models.MoodCalm: 80, models.MoodEnergetic: 85,
				models.MoodMotivational: 80, models.MoodDance: 75, models.MoodLove: 70,
			},
		},
		{
			Name:       "S. Thaman",
			Aliases:    []string{"thaman", "s. thaman", "s thaman"},
			Popularity: 80,
			ActiveFrom: 2008,
			Genres:     []string{"kollywood", "commercial", "mass", "electronic"},
			MoodStrength: strengths{
				models.MoodDance: 90, models.MoodEnergetic: 95, models.MoodMotivational: 85,
				models.MoodNeutral: 70, models.MoodLove: 60, models.MoodCalm: 50,
			},
		},
	}
}

func englishArtists() []ArtistProfile {
	return []ArtistProfile{
		{
			Name:       "Calvin Harris",
			Aliases:    []string{"calvin harris", "calvin"},
			Popularity: 95,
			ActiveFrom: 2006,
			Genres:     []string{"edm", "dance", "electronic", "house"},
			MoodStrength: strengths{
				models.MoodDance: 100, models.MoodEnergetic: 95, models.MoodMotivational: 70,
				models.MoodNeutral: 60, models.MoodLove: 65, models.MoodCalm: 30,
			},
		},
		{
			Name:       "David Guetta",
			Aliases:    []string{"david guetta", "guetta"},
			Popularity: 95,
			ActiveFrom: 2001,
			Genres:     []string{"edm", "dance", "electronic", "progressive house"},
			MoodStrength: strengths{
				models.MoodDance: 100, models.MoodEnergetic: 95, models.MoodMotivational: 75,
				models.MoodNeutral: 55, models.MoodLove: 60, models.MoodCalm: 25,
			},
		},
		{
			Name:       "Martin Garrix",
			Aliases:    []string{"martin garrix", "garrix"},
			Popularity: 90,
			ActiveFrom: 2012,
			Genres:     []string{"edm", "big room", "progressive house", "festival"},
			MoodStrength: strengths{
				models.MoodDance: 95, models.MoodEnergetic: 100, models.MoodMotivational: 80,
				models.MoodNeutral: 60, models.MoodLove: 55, models.MoodCalm: 30,
			},
		},
		{
			Name:       "The Weeknd",
			Aliases:    []string{"the weeknd", "weeknd", "abel"},
			Popularity: 100,
			ActiveFrom: 2010,
			Genres:     []string{"pop", "r&b", "alternative r&b", "synth-pop"},
			MoodStrength: strengths{
				models.MoodLove: 95, models.MoodEnergetic: 85, models.MoodDance: 80,
				models.MoodNeutral: 90, models.MoodMotivational: 70, models.MoodCalm: 60,
			},
		},
		{
			Name:       "Dua Lipa",
			Aliases:    []string{"dua lipa", "dua"},
			Popularity: 95,
			ActiveFrom: 2015,
			Genres:     []string{"dance-pop", "disco", "pop", "electropop"},
			MoodStrength: strengths{
				models.MoodDance: 95, models.MoodEnergetic: 90, models.MoodLove: 80,
				models.MoodMotivational: 85, models.MoodNeutral: 75, models.MoodCalm: 40,
			},
		},
		{
			Name:       "Eminem",
			Aliases:    []string{"eminem", "slim shady", "marshall mathers"},
			Popularity: 100,
			ActiveFrom: 1996,
			Genres:     []string{"hip-hop", "rap", "conscious rap"},
			MoodStrength: strengths{
				models.MoodMotivational: 100, models.MoodEnergetic: 95, models.MoodDance: 70,
				models.MoodNeutral: 80, models.MoodLove: 50, models.MoodCalm: 30,
			},
		},
		{
			Name:       "Kanye West",
			Aliases:    []string{"kanye west", "kanye", "ye"},
			Popularity: 95,
			ActiveFrom: 1996,
			Genres:     []string{"hip-hop", "rap", "experimental hip-hop"},
			MoodStrength: strengths{
				models.MoodMotivational: 95, models.MoodEnergetic: 90, models.MoodDance: 80,
				models.MoodNeutral: 75, models.MoodLove: 60, models.MoodCalm: 40,
			},
		},
		{
			Name:       "Adele",
			Aliases:    []string{"adele", "adele adkins"},
			Popularity: 100,
			ActiveFrom: 2006,
			Genres:     []string{"soul", "pop", "ballad"},
			MoodStrength: strengths{
				models.MoodLove: 100, models.MoodCalm: 95, models.MoodNeutral: 90,
				models.MoodMotivational: 70, models.MoodEnergetic: 50, models.MoodDance: 40,
			},
		},
		{
			Name:       "Ed Sheeran",
			Aliases:    []string{"ed sheeran", "ed"},
			Popularity: 100,
			ActiveFrom: 2004,
			Genres:     []string{"pop", "folk-pop", "acoustic"},
			MoodStrength: strengths{
				models.MoodLove: 95, models.MoodCalm: 85, models.MoodNeutral: 90,
				models.MoodMotivational: 60, models.MoodEnergetic: 70, models.MoodDance: 65,
			},
		},
		{
			Name:       "Billie Eilish",
			Aliases:    []string{"billie eilish", "billie"},
			Popularity: 95,
			ActiveFrom: 2015,
			Genres:     []string{"alternative pop", "dark pop", "electropop"},
			MoodStrength: strengths{
				models.MoodCalm: 90, models.MoodNeutral: 95, models.MoodLove: 75,
				models.MoodEnergetic: 60, models.MoodMotivational: 70, models.MoodDance: 65,
			},
		},
	}
}
