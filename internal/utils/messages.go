package utils

// User-facing messages. Technical detail goes to the logs only.
const (
	MsgUnauthorized     = "Veuillez vous connecter"
	MsgForbidden        = "Accès refusé"
	MsgInvalidInput     = "Données invalides"
	MsgNotFound         = "Introuvable"
	MsgInternal         = "Une erreur est survenue, veuillez réessayer"
	MsgTooManyRequests  = "Trop de requêtes, veuillez patienter"
	MsgInvalidLogin     = "Email ou mot de passe incorrect"
	MsgEmailExists      = "Cet email est déjà utilisé"
	MsgSignedIn         = "Connexion réussie"
	MsgSignedUp         = "Compte créé"
	MsgSignedOut        = "Déconnexion réussie"
	MsgLoadProducts     = "Impossible de charger les produits"
	MsgLoadCart         = "Impossible de charger le panier"
	MsgLoadWishlist     = "Impossible de charger vos favoris"
	MsgCartUpdated      = "Panier mis à jour"
	MsgAddedToCart      = "Ajouté au panier"
	MsgProductMissing   = "Produit indisponible"
	MsgWishlistAdded    = "Ajouté à vos favoris"
	MsgWishlistExists   = "Déjà dans vos favoris"
	MsgWishlistRemoved  = "Retiré de vos favoris"
	MsgSaved            = "Modifications enregistrées"
	MsgSaveFailed       = "Impossible d'enregistrer les modifications"
	MsgDeleted          = "Supprimé"
	MsgPendingApproval  = "Modifications envoyées pour validation"
	MsgApproved         = "Modification approuvée"
	MsgRejected         = "Modification rejetée"
	MsgAlreadyProcessed = "Cette demande a déjà été traitée"
)
