package mysql

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const insertUserSQL = `
INSERT INTO users
  (id, email, password_hash, name, is_hotel_owner, created_at)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const selectUserColumns = `id, email, password_hash, name, is_hotel_owner, created_at`

const getUserByEmailSQL = `SELECT ` + selectUserColumns + ` FROM users WHERE email = ?`

const getUserByIDSQL = `SELECT ` + selectUserColumns + ` FROM users WHERE id = ?`

// -----------------------------------------------------------------------------
// HOTELS
// -----------------------------------------------------------------------------

const insertHotelSQL = `
INSERT INTO hotels
  (id, owner_id, name, description, price, location, amenities, home_office_amenities,
   rating, images, booking_url, address, phone, email, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectHotelColumns = `
  id, owner_id, name, description, price, location, amenities, home_office_amenities,
  rating, images, booking_url, address, phone, email, created_at`

const getHotelSQL = `SELECT ` + selectHotelColumns + ` FROM hotels WHERE id = ?`

const getOwnedHotelSQL = `SELECT ` + selectHotelColumns + ` FROM hotels WHERE id = ? AND owner_id = ?`

const listHotelsByOwnerSQL = `SELECT ` + selectHotelColumns + ` FROM hotels WHERE owner_id = ?`

// Insertion order stands in for the store default ordering.
const listHotelsSQL = `SELECT ` + selectHotelColumns + ` FROM hotels ORDER BY seq LIMIT ?`

const hotelsWithinSQL = `SELECT ` + selectHotelColumns + `
FROM hotels
WHERE lat BETWEEN ? AND ?
  AND lon BETWEEN ? AND ?
ORDER BY id`

// The box crosses the antimeridian: lon >= minLon OR lon <= maxLon.
const hotelsWithinWrappedSQL = `SELECT ` + selectHotelColumns + `
FROM hotels
WHERE lat BETWEEN ? AND ?
  AND (lon >= ? OR lon <= ?)
ORDER BY id`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ? AND owner_id = ?`

// updateHotelPrefix is completed with the SET list built from the supplied patch fields.
const updateHotelPrefix = `UPDATE hotels SET `

const updateHotelWhere = ` WHERE id = ? AND owner_id = ?`
