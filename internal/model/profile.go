package model

import "time"

// Profile models a row in the `user_profiles` table.  Each user has at
// most one profile; all optional columns are pointers so PATCH-style
// updates can distinguish "absent" from "cleared".
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – owning user (unique).
//  FirstName     – given name.
//  LastName      – family name.
//  PhoneNumber   – contact number.
//  Address       – postal address.
//  AvatarURL     – avatar image location.
//  StatusMessage – free-form presence text.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Profile struct {
    ID            uint64    // user_profiles.id
    UserID        uint64    // user_profiles.user_id
    FirstName     *string   // user_profiles.first_name (nullable)
    LastName      *string   // user_profiles.last_name (nullable)
    PhoneNumber   *string   // user_profiles.phone_number (nullable)
    Address       *string   // user_profiles.address (nullable)
    AvatarURL     *string   // user_profiles.avatar_url (nullable)
    StatusMessage *string   // user_profiles.status_message (nullable)
    CreatedAt     time.Time // user_profiles.created_at
    UpdatedAt     time.Time // user_profiles.updated_at
}
