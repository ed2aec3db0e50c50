package entry

// EnteringRoom is logged when the local user enters a room.
type EnteringRoom struct {
	Timestamp Timestamp
	RoomName  string
}

var enteringRoomSchema = []FieldSpec{
	{Name: "timestamp", Class: ClassTimestamp},
	{Name: "room_name"},
}

func (e *EnteringRoom) TypeID() TypeID { return TypeEnteringRoom }
func (e *EnteringRoom) At() Timestamp  { return e.Timestamp }
func (e *EnteringRoom) sealed()        {}

func (e *EnteringRoom) Fields() []Field {
	return withValues(enteringRoomSchema, e.Timestamp, e.RoomName)
}

// PlayerJoin is logged when a player joins the instance.
type PlayerJoin struct {
	Timestamp      Timestamp
	UserName       UserName
	PseudoUserName PseudoUserName
}

var playerPresenceSchema = []FieldSpec{
	{Name: "timestamp", Class: ClassTimestamp},
	{Name: "user_name", Class: ClassUserName},
	{Name: "pseudo_user_name", Class: ClassPseudoUserName},
}

func (e *PlayerJoin) TypeID() TypeID { return TypePlayerJoin }
func (e *PlayerJoin) At() Timestamp  { return e.Timestamp }
func (e *PlayerJoin) sealed()        {}

func (e *PlayerJoin) Fields() []Field {
	return withValues(playerPresenceSchema, e.Timestamp, e.UserName, e.PseudoUserName)
}

// PlayerLeft is logged when a player leaves the instance.
type PlayerLeft struct {
	Timestamp      Timestamp
	UserName       UserName
	PseudoUserName PseudoUserName
}

func (e *PlayerLeft) TypeID() TypeID { return TypePlayerLeft }
func (e *PlayerLeft) At() Timestamp  { return e.Timestamp }
func (e *PlayerLeft) sealed()        {}

func (e *PlayerLeft) Fields() []Field {
	return withValues(playerPresenceSchema, e.Timestamp, e.UserName, e.PseudoUserName)
}

// PlayerPositionVersion announces the layout of the player position
// entries that follow it.
type PlayerPositionVersion struct {
	Timestamp Timestamp
	Major     int
	Minor     int
	Patch     int
}

var playerPositionVersionSchema = []FieldSpec{
	{Name: "timestamp", Class: ClassTimestamp},
	{Name: "major"},
	{Name: "minor"},
	{Name: "patch"},
}

func (e *PlayerPositionVersion) TypeID() TypeID { return TypePlayerPositionVersion }
func (e *PlayerPositionVersion) At() Timestamp  { return e.Timestamp }
func (e *PlayerPositionVersion) sealed()        {}

func (e *PlayerPositionVersion) Fields() []Field {
	return withValues(playerPositionVersionSchema, e.Timestamp, e.Major, e.Minor, e.Patch)
}

// Version returns the announced schema version.
func (e *PlayerPositionVersion) Version() SchemaVersion {
	return SchemaVersion{Major: e.Major, Minor: e.Minor, Patch: e.Patch}
}

// PlayerPosition is one sampled position of a player.
//
// LocationY and the velocity components are nil for entries written
// before schema 1.0.0.
type PlayerPosition struct {
	Timestamp      Timestamp
	PlayerID       PlayerID
	UserName       UserName
	PseudoUserName PseudoUserName

	LocationX float64
	LocationY *float64
	LocationZ float64

	Rotation1 float64 // pitch
	Rotation2 float64 // yaw
	Rotation3 float64 // roll

	IsVR bool

	VelocityX *float64
	VelocityY *float64
	VelocityZ *float64
}

var playerPositionSchema = []FieldSpec{
	{Name: "timestamp", Class: ClassTimestamp},
	{Name: "player_id", Class: ClassPlayerID},
	{Name: "user_name", Class: ClassUserName},
	{Name: "pseudo_user_name", Class: ClassPseudoUserName},
	{Name: "location_x"},
	{Name: "location_y"},
	{Name: "location_z"},
	{Name: "rotation_1"},
	{Name: "rotation_2"},
	{Name: "rotation_3"},
	{Name: "is_vr"},
	{Name: "velocity_x", Extended: true},
	{Name: "velocity_y", Extended: true},
	{Name: "velocity_z", Extended: true},
}

func (e *PlayerPosition) TypeID() TypeID { return TypePlayerPosition }
func (e *PlayerPosition) At() Timestamp  { return e.Timestamp }
func (e *PlayerPosition) sealed()        {}

func (e *PlayerPosition) Fields() []Field {
	return withValues(playerPositionSchema,
		e.Timestamp, e.PlayerID, e.UserName, e.PseudoUserName,
		e.LocationX, e.LocationY, e.LocationZ,
		e.Rotation1, e.Rotation2, e.Rotation3,
		e.IsVR,
		e.VelocityX, e.VelocityY, e.VelocityZ,
	)
}

// QuestionnaireAnswer maps questions to the answers given.
type QuestionnaireAnswer struct {
	Timestamp         Timestamp
	AnswerForQuestion map[string]string
}

var questionnaireAnswerSchema = []FieldSpec{
	{Name: "timestamp", Class: ClassTimestamp},
	{Name: "answer_for_question"},
}

func (e *QuestionnaireAnswer) TypeID() TypeID { return TypeQuestionnaireAnswer }
func (e *QuestionnaireAnswer) At() Timestamp  { return e.Timestamp }
func (e *QuestionnaireAnswer) sealed()        {}

func (e *QuestionnaireAnswer) Fields() []Field {
	return withValues(questionnaireAnswerSchema, e.Timestamp, e.AnswerForQuestion)
}

// TagMarker maps player ids to the names of the tags they carry, in tag
// list order.
type TagMarker struct {
	Timestamp           Timestamp
	TagNamesForPlayerID map[PlayerID][]string
}

var tagMarkerSchema = []FieldSpec{
	{Name: "timestamp", Class: ClassTimestamp},
	{Name: "tag_names_for_player_id", Class: ClassPlayerID},
}

func (e *TagMarker) TypeID() TypeID { return TypeTagMarker }
func (e *TagMarker) At() Timestamp  { return e.Timestamp }
func (e *TagMarker) sealed()        {}

func (e *TagMarker) Fields() []Field {
	return withValues(tagMarkerSchema, e.Timestamp, e.TagNamesForPlayerID)
}
