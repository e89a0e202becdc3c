package handlers

// @title Gallery Delivery API
// @version 1.0
// @description Client gallery delivery for a photography studio: gallery sign-in, image upload and listing, booking enquiries and VIP curation commands.

// @host localhost:8081
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the gallery session token.

// @tag.name auth
// @tag.description Gallery sign-in

// @tag.name galleries
// @tag.description Gallery lifecycle operations

// @tag.name images
// @tag.description Image upload and listing

// @tag.name contact
// @tag.description Booking enquiries

// @tag.name health
// @tag.description Service health
