package model

import "time"

// Loft describes a rentable property listed by a partner.  Prices are
// stored as whole Algerian dinars; the currency code is kept per loft so
// display conversion can be applied for foreign guests.  This struct
// corresponds to a row in the `lofts` table.
//
// Fields:
//  ID            – primary key identifier.
//  PartnerID     – partner who operates the loft.
//  Name          – listing title, unique per partner.
//  Address       – street address shown on the listing.
//  PricePerNight – nightly rate in DZD.
//  CleaningFee   – one-off cleaning fee in DZD.
//  Currency      – ISO currency code the amounts are quoted in (DZD).
//  IsActive      – whether the loft is open for booking.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Loft struct {
    ID            uint64    // lofts.id
    PartnerID     uint64    // lofts.partner_id
    Name          string    // lofts.name
    Address       string    // lofts.address
    PricePerNight uint64    // lofts.price_per_night
    CleaningFee   uint64    // lofts.cleaning_fee
    Currency      string    // lofts.currency
    IsActive      bool      // lofts.is_active
    CreatedAt     time.Time // lofts.created_at
    UpdatedAt     time.Time // lofts.updated_at
}
