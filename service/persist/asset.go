package persist

import (
	"fmt"
	"strings"
)

// MaxAssetCap is the maximum number of assets a single bulk action may carry
const MaxAssetCap = 5

const (
	// TypeCaptain is a captain character NFT
	TypeCaptain AssetType = "CAPTAIN"
	// TypeShip is a standard ship NFT
	TypeShip AssetType = "SHIP"
	// TypeItem is an equippable item NFT
	TypeItem AssetType = "ITEM"
	// TypeCrew is a crew member NFT
	TypeCrew AssetType = "CREW"
	// TypeGenesisShip is a genesis ship, minted through the core program path
	TypeGenesisShip AssetType = "GENESIS_SHIP"
)

const (
	// LocationInWallet means the asset is held (frozen/delegated) in the user's wallet
	LocationInWallet Location = "IN_WALLET"
	// LocationInGame means the asset is in game custody and usable
	LocationInGame Location = "IN_GAME"
)

const (
	// MintStatusMinted selects assets that exist as on-chain NFTs
	MintStatusMinted MintStatus = "minted"
	// MintStatusNotMinted selects off-chain asset records
	MintStatusNotMinted MintStatus = "not-minted"
)

const (
	RarityCommon    Rarity = "COMMON"
	RarityUncommon  Rarity = "UNCOMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
	RarityMythic    Rarity = "MYTHIC"
	// RarityAll disables rarity filtering
	RarityAll Rarity = "ALL"
)

// CollectionAll disables collection filtering
const CollectionAll = "ALL"

// AssetID is the stable identifier of an asset: a mint address for on-chain
// assets, an internal uid for off-chain records
type AssetID string

// AssetType represents the kind of game asset
type AssetType string

// Location represents which custody side an asset is currently on
type Location string

// MintStatus represents whether an asset exists as an on-chain NFT
type MintStatus string

// Rarity represents an asset's rarity tier
type Rarity string

// Asset represents a single game asset as the pipeline sees it
type Asset struct {
	ID            AssetID   `json:"id" binding:"required"`
	Type          AssetType `json:"type" binding:"required"`
	Name          string    `json:"name"`
	Collection    string    `json:"collection"`
	Rarity        Rarity    `json:"rarity"`
	Level         int       `json:"level"`
	Location      Location  `json:"location"`
	Minted        bool      `json:"minted"`
	ActionLimited bool      `json:"is_action_limited"` // e.g. captain on mission, item equipped
}

func (a AssetType) String() string {
	return string(a)
}

func (a AssetType) IsValid() bool {
	switch a {
	case TypeCaptain, TypeShip, TypeItem, TypeCrew, TypeGenesisShip:
		return true
	default:
		return false
	}
}

// IsCoreNFT reports whether the type is minted through the core program path
// rather than the standard token metadata path
func (a AssetType) IsCoreNFT() bool {
	return a == TypeGenesisShip
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (a *AssetType) UnmarshalJSON(b []byte) error {
	n := strings.Trim(string(b), `"`)
	switch strings.ToUpper(n) {
	case "CAPTAIN":
		*a = TypeCaptain
	case "SHIP":
		*a = TypeShip
	case "ITEM":
		*a = TypeItem
	case "CREW":
		*a = TypeCrew
	case "GENESIS_SHIP":
		*a = TypeGenesisShip
	default:
		return fmt.Errorf("invalid asset type: %s", n)
	}
	return nil
}

func (l Location) String() string {
	return string(l)
}

func (l Location) IsValid() bool {
	switch l {
	case LocationInWallet, LocationInGame:
		return true
	default:
		return false
	}
}

func (m MintStatus) String() string {
	return string(m)
}

func (m MintStatus) IsValid() bool {
	switch m {
	case MintStatusMinted, MintStatusNotMinted:
		return true
	default:
		return false
	}
}

// Matches reports whether an asset's minted flag satisfies the status filter
func (m MintStatus) Matches(minted bool) bool {
	if m == MintStatusMinted {
		return minted
	}
	return !minted
}

func (r Rarity) String() string {
	return string(r)
}

func (r Rarity) IsValid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary, RarityMythic, RarityAll:
		return true
	default:
		return false
	}
}

func (id AssetID) String() string {
	return string(id)
}
