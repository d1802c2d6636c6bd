package marketplace

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/novatoken/marketplace/pkg/models"
)

// SeedResult reports what a seed run inserted.
type SeedResult struct {
	Message     string `json:"message"`
	Collections int    `json:"collections"`
	Items       int    `json:"nfts"`
	Listings    int    `json:"listings"`
}

type seedItem struct {
	tokenID     string
	contract    string
	name        string
	description string
	image       string
	owner       string
	attributes  string
	price       string
}

var seedOwners = []string{
	"0x00000000000000000000000000000000000000a1",
	"0x00000000000000000000000000000000000000a2",
	"0x00000000000000000000000000000000000000a3",
}

var seedCollections = []models.Collection{
	{
		Name:            "Cosmic Dreamers",
		Description:     "A collection of surreal cosmic artworks exploring the depths of imagination",
		ContractAddress: "0x1234567890abcdef1234567890abcdef12345678",
		CreatorAddress:  "0x00000000000000000000000000000000000000a1",
		ChainID:         137,
	},
	{
		Name:            "Digital Abstracts",
		Description:     "Abstract digital art pushing the boundaries of color and form",
		ContractAddress: "0xabcdef1234567890abcdef1234567890abcdef12",
		CreatorAddress:  "0x00000000000000000000000000000000000000a2",
		ChainID:         137,
	},
	{
		Name:            "Neon Futures",
		Description:     "Cyberpunk-inspired neon artworks from the future",
		ContractAddress: "0x567890abcdef1234567890abcdef123456789012",
		CreatorAddress:  "0x00000000000000000000000000000000000000a3",
		ChainID:         137,
	},
}

var seedItems = []seedItem{
	{"1", "0x1234567890abcdef1234567890abcdef12345678", "Stellar Voyage", "A journey through the cosmic void",
		"https://images.novatoken.io/cosmic/stellar-voyage.jpg", "0x00000000000000000000000000000000000000a1",
		`[{"trait_type":"Background","value":"Cosmic"},{"trait_type":"Rarity","value":"Rare"}]`, "0.8"},
	{"2", "0x1234567890abcdef1234567890abcdef12345678", "Nebula Dreams", "Dreams painted in stardust",
		"https://images.novatoken.io/cosmic/nebula-dreams.jpg", "0x00000000000000000000000000000000000000a2",
		`[{"trait_type":"Background","value":"Nebula"},{"trait_type":"Rarity","value":"Epic"}]`, "1.2"},
	{"3", "0x1234567890abcdef1234567890abcdef12345678", "Galaxy Portal", "A gateway to infinite worlds",
		"https://images.novatoken.io/cosmic/galaxy-portal.jpg", "0x00000000000000000000000000000000000000a3",
		`[{"trait_type":"Background","value":"Portal"},{"trait_type":"Rarity","value":"Common"}]`, "0.5"},
	{"1", "0xabcdef1234567890abcdef1234567890abcdef12", "Color Explosion", "Abstract burst of vibrant colors",
		"https://images.novatoken.io/abstract/color-explosion.jpg", "0x00000000000000000000000000000000000000a1",
		`[{"trait_type":"Style","value":"Explosive"},{"trait_type":"Rarity","value":"Rare"}]`, "0.9"},
	{"2", "0xabcdef1234567890abcdef1234567890abcdef12", "Fluid Motion", "Flowing abstract patterns",
		"https://images.novatoken.io/abstract/fluid-motion.jpg", "0x00000000000000000000000000000000000000a2",
		`[{"trait_type":"Style","value":"Fluid"},{"trait_type":"Rarity","value":"Common"}]`, "0.7"},
	{"1", "0x567890abcdef1234567890abcdef123456789012", "Cyber City", "Neon-lit cityscape of tomorrow",
		"https://images.novatoken.io/neon/cyber-city.jpg", "0x00000000000000000000000000000000000000a3",
		`[{"trait_type":"Theme","value":"Cyberpunk"},{"trait_type":"Rarity","value":"Legendary"}]`, "1.5"},
	{"2", "0x567890abcdef1234567890abcdef123456789012", "Digital Samurai", "Warrior of the digital realm",
		"https://images.novatoken.io/neon/digital-samurai.jpg", "0x00000000000000000000000000000000000000a1",
		`[{"trait_type":"Theme","value":"Warrior"},{"trait_type":"Rarity","value":"Legendary"}]`, "2.0"},
	{"3", "0x567890abcdef1234567890abcdef123456789012", "Neon Runner", "Speed through neon streets",
		"https://images.novatoken.io/neon/neon-runner.jpg", "0x00000000000000000000000000000000000000a2",
		`[{"trait_type":"Theme","value":"Speed"},{"trait_type":"Rarity","value":"Epic"}]`, "1.3"},
}

// Seed loads development fixtures: collections, items and an active listing
// per item. A second run is a no-op.
func (s *Service) Seed(ctx context.Context) (*SeedResult, error) {
	existing, err := s.registry.CountCollections(ctx)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return &SeedResult{Message: "data already seeded", Collections: int(existing)}, nil
	}

	collectionIDs := map[string]string{}
	for i := range seedCollections {
		col := seedCollections[i]
		created, err := s.CreateCollection(ctx, &col)
		if err != nil {
			return nil, err
		}
		collectionIDs[created.ContractAddress] = created.ID.String()
	}

	listings := 0
	for _, si := range seedItems {
		item := &models.Item{
			TokenID:         si.tokenID,
			ContractAddress: si.contract,
			Name:            si.name,
			Description:     si.description,
			Image:           si.image,
			OwnerAddress:    si.owner,
			Attributes:      si.attributes,
		}
		if colID, ok := collectionIDs[si.contract]; ok {
			col, err := s.GetCollection(ctx, colID)
			if err != nil {
				return nil, err
			}
			item.CollectionID = &col.ID
		}
		registered, err := s.RegisterItem(ctx, item)
		if err != nil {
			return nil, err
		}

		price, err := decimal.NewFromString(si.price)
		if err != nil {
			return nil, err
		}
		if _, err := s.ListItem(ctx, registered.ID.String(), registered.OwnerAddress, price); err != nil {
			return nil, err
		}
		listings++
	}

	s.logger.Info("Seed data loaded",
		zap.Int("collections", len(seedCollections)),
		zap.Int("items", len(seedItems)))
	return &SeedResult{
		Message:     "data seeded successfully",
		Collections: len(seedCollections),
		Items:       len(seedItems),
		Listings:    listings,
	}, nil
}
