package model

import "time"

// Equipment represents a rentable machine listed by a farmer, as stored
// in the `equipment` table. Image URLs are kept as a JSON array in a
// TEXT column; the repository handles encoding and decoding.
//
// Fields:
//  ID             - primary key identifier.
//  OwnerID        - farmer who owns the listing.
//  Name           - short display name (e.g. "John Deere 5050D").
//  Description    - free-form description of the machine.
//  Category       - category label (tractor, harvester, ...).
//  DailyRateCents - rental price per day in cents, never negative.
//  Location       - where the machine can be picked up.
//  ImageURLs      - links to listing photos.
//  Availability   - owner-controlled flag; false hides the listing from
//                   new bookings. Not derived from booking state.
//  CreatedAt      - creation timestamp.
//  UpdatedAt      - last update timestamp.
type Equipment struct {
	ID             uint64    // equipment.id
	OwnerID        uint64    // equipment.owner_id
	Name           string    // equipment.name
	Description    string    // equipment.description
	Category       string    // equipment.category
	DailyRateCents uint32    // equipment.daily_rate_cents
	Location       string    // equipment.location
	ImageURLs      []string  // equipment.image_urls (JSON array in TEXT)
	Availability   bool      // equipment.availability
	CreatedAt      time.Time // equipment.created_at
	UpdatedAt      time.Time // equipment.updated_at
}
