package models

// Offer : une offre de la campagne vin.
type Offer struct {
	ID          int     `json:"offerId"`
	Campaign    string  `json:"campaign"`
	Varietal    string  `json:"varietal"`
	MinQuantity int     `json:"minQuantity"`
	Discount    float64 `json:"discount"`
	Origin      string  `json:"origin"`
	PastPeak    bool    `json:"pastPeak"`
}

// OfferResponse : un client a répondu à une offre.
type OfferResponse struct {
	CustomerName string `json:"customerName"`
	OfferID      int    `json:"offerId"`
}

// CustomerCluster : appartenance d'un client et ses coordonnées dans le plan ACP.
type CustomerCluster struct {
	CustomerName string  `json:"customerName"`
	Cluster      int     `json:"cluster"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
}

// ClusterSize : effectif d'un cluster.
type ClusterSize struct {
	Cluster   int `json:"cluster"`
	Customers int `json:"customers"`
}

// OfferGroupProfile décrit les offres acceptées par un groupe de clients.
type OfferGroupProfile struct {
	Responses       int            `json:"responses"`
	Varietals       map[string]int `json:"varietals"`
	MeanMinQuantity float64        `json:"meanMinQuantity"`
	MeanDiscount    float64        `json:"meanDiscount"`
}

// ClusterResult est le résultat complet de l'analyse des offres.
type ClusterResult struct {
	K          int               `json:"k"`
	Iterations int               `json:"iterations"`
	Inertia    float64           `json:"inertia"`
	Customers  []CustomerCluster `json:"customers"`
	Sizes      []ClusterSize     `json:"sizes"`
	Focus      int               `json:"focusCluster"`
	Inside     OfferGroupProfile `json:"inside"`
	Outside    OfferGroupProfile `json:"outside"`
}
