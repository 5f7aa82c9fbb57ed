package models

import "errors"

// Erreurs de domaine, à comparer avec errors.Is.
var (
	ErrEmptyInput     = errors.New("aucune donnée exploitable")
	ErrMissingColumn  = errors.New("colonne manquante")
	ErrInvalidDate    = errors.New("date invalide")
	ErrInvalidNumber  = errors.New("nombre invalide")
	ErrUnknownSource  = errors.New("source inconnue")
	ErrInvalidK       = errors.New("nombre de clusters invalide")
	ErrInvalidShape   = errors.New("dimensions de matrice invalides")
	ErrUnknownSegment = errors.New("segment inconnu")
)
