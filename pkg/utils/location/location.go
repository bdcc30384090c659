package location

import (
	"encoding/json"
	"os"
)

type Country struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	ISO2      string `json:"iso2"`
	PhoneCode string `json:"phonecode"`
	Currency  string `json:"currency"`
}

type State struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	StateCode   string `json:"state_code"`
}

type City struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	StateCode string `json:"state_code"`
}

var (
	countries []Country
	states    []State
	cities    []City
)

// Init loads the service-area data shipped with the binary.
func Init() error {
	cData, err := os.ReadFile("pkg/data/countries.json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(cData, &countries); err != nil {
		return err
	}

	sData, err := os.ReadFile("pkg/data/states.json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(sData, &states); err != nil {
		return err
	}

	ciData, err := os.ReadFile("pkg/data/cities.json")
	if err != nil {
		return err
	}
	return json.Unmarshal(ciData, &cities)
}

func GetCountries() []Country {
	return countries
}

func GetStatesByCountry(countryCode string) []State {
	var countryStates []State
	for _, state := range states {
		if state.CountryCode == countryCode {
			countryStates = append(countryStates, state)
		}
	}
	return countryStates
}

func GetCitiesByState(stateCode string) []City {
	var stateCities []City
	for _, city := range cities {
		if city.StateCode == stateCode {
			stateCities = append(stateCities, city)
		}
	}
	return stateCities
}
