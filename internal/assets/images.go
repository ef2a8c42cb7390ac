// Package assets holds the static image URLs sampled by the seeder.
package assets

type Images struct {
	AgentAvatars   []string
	ReviewAvatars  []string
	Gallery        []string
	PropertyPhotos []string
}

func Default() Images {
	return Images{
		AgentAvatars:   agentImages,
		ReviewAvatars:  reviewImages,
		Gallery:        galleryImages,
		PropertyPhotos: propertiesImages,
	}
}

var agentImages = []string{
	"https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=640",
	"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=640",
	"https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=640",
	"https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=640",
	"https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=640",
	"https://images.unsplash.com/photo-1544005313-94ddf0286df2?w=640",
}

var reviewImages = []string{
	"https://images.unsplash.com/photo-1531123897727-8f129e1688ce?w=640",
	"https://images.unsplash.com/photo-1506794778202-cad84cf45f1d?w=640",
	"https://images.unsplash.com/photo-1517841905240-472988babdf9?w=640",
	"https://images.unsplash.com/photo-1534528741775-53994a69daeb?w=640",
	"https://images.unsplash.com/photo-1539571696357-5a69c17a67c6?w=640",
	"https://images.unsplash.com/photo-1524504388940-b1c1722653e1?w=640",
}

var galleryImages = []string{
	"https://images.unsplash.com/photo-1560448204-e02f11c3d0e2?w=1200",
	"https://images.unsplash.com/photo-1560185893-a55cbc8c57e8?w=1200",
	"https://images.unsplash.com/photo-1560185007-cde436f6a4d0?w=1200",
	"https://images.unsplash.com/photo-1560184897-ae75f418493e?w=1200",
	"https://images.unsplash.com/photo-1502672260266-1c1ef2d93688?w=1200",
	"https://images.unsplash.com/photo-1505691938895-1758d7feb511?w=1200",
	"https://images.unsplash.com/photo-1522708323590-d24dbb6b0267?w=1200",
	"https://images.unsplash.com/photo-1484154218962-a197022b5858?w=1200",
	"https://images.unsplash.com/photo-1493809842364-78817add7ffb?w=1200",
	"https://images.unsplash.com/photo-1556911220-bff31c812dba?w=1200",
	"https://images.unsplash.com/photo-1600585154340-be6161a56a0c?w=1200",
	"https://images.unsplash.com/photo-1600607687939-ce8a6c25118c?w=1200",
}

var propertiesImages = []string{
	"https://images.unsplash.com/photo-1568605114967-8130f3a36994?w=1200",
	"https://images.unsplash.com/photo-1570129477492-45c003edd2be?w=1200",
	"https://images.unsplash.com/photo-1512917774080-9991f1c4c750?w=1200",
	"https://images.unsplash.com/photo-1564013799919-ab600027ffc6?w=1200",
	"https://images.unsplash.com/photo-1580587771525-78b9dba3b914?w=1200",
	"https://images.unsplash.com/photo-1613490493576-7fde63acd811?w=1200",
	"https://images.unsplash.com/photo-1600596542815-ffad4c1539a9?w=1200",
	"https://images.unsplash.com/photo-1605276374104-dee2a0ed3cd6?w=1200",
	"https://images.unsplash.com/photo-1583608205776-bfd35f0d9f83?w=1200",
	"https://images.unsplash.com/photo-1600047509807-ba8f99d2cdde?w=1200",
}
